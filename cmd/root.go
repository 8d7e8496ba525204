package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootLogLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "playsync",
	Short: "Reconcile listening history across scrobbling services",
	Long: `playsync aggregates your recently played tracks from Last.fm,
ListenBrainz, and Libre.fm, reconciles duplicate observations of the
same play into one record, and repairs gaps by replaying plays to the
services that missed them.

Configure services and credentials in ~/.config/playsync/config.yaml,
then run 'playsync refresh' to reconcile and backfill.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
