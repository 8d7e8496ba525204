package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smerrill/playsync/internal/config"
	"github.com/smerrill/playsync/internal/fanout"
	"github.com/smerrill/playsync/internal/reconcile"
	"github.com/smerrill/playsync/internal/service"
	"github.com/smerrill/playsync/internal/track"
)

var deleteTimestamp int64

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ARTIST TRACK",
	Short: "Delete a recent play from every service that recorded it",
	Long: `Locate a recent play by artist and track name and delete it from
every enabled service that has an observation of it. Each service's
outcome is independent; one failure does not block the others.

Use --timestamp to disambiguate when the track was played more than
once recently.`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().Int64Var(&deleteTimestamp, "timestamp", 0, "Epoch seconds of the play to delete (default: most recent)")
}

func runDelete(cmd *cobra.Command, args []string) error {
	artist, name := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(rootLogLevel)

	adapters, err := service.Build(cfg)
	if err != nil {
		return err
	}
	if len(adapters) == 0 {
		return fmt.Errorf("no services enabled. Edit ~/.config/playsync/config.yaml first")
	}

	ctx := context.Background()

	// Reconcile without backfill so we know which services hold the play
	coordinator := reconcile.New(adapters, cfg, nil, logger)
	tracks, err := coordinator.Refresh(ctx, cfg.PageSize, 1)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	target := findPlay(tracks, artist, name, deleteTimestamp)
	if target == nil {
		return fmt.Errorf("no recent play of %q by %q found", name, artist)
	}

	deleter := fanout.NewDeleter(adapters, logger)
	results := deleter.Delete(ctx, target.Artist, target.Name, target.Services)

	failed := 0
	for svc, err := range results {
		if err != nil {
			failed++
			fmt.Printf("%s: failed: %v\n", svc, err)
		} else {
			fmt.Printf("%s: deleted\n", svc)
		}
	}

	if failed > 0 {
		return fmt.Errorf("delete failed on %d of %d services", failed, len(results))
	}
	return nil
}

// findPlay locates the reconciled play matching artist/name, and the
// exact timestamp when one is given.
func findPlay(tracks []*track.Reconciled, artist, name string, timestamp int64) *track.Reconciled {
	for _, r := range tracks {
		if !strings.EqualFold(strings.TrimSpace(r.Artist), strings.TrimSpace(artist)) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(r.Name), strings.TrimSpace(name)) {
			continue
		}
		if timestamp > 0 && (r.PlayedAt == nil || *r.PlayedAt != timestamp) {
			continue
		}
		return r
	}
	return nil
}
