package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/smerrill/playsync/internal/backfill"
	"github.com/smerrill/playsync/internal/config"
	"github.com/smerrill/playsync/internal/reconcile"
	"github.com/smerrill/playsync/internal/service"
	"github.com/smerrill/playsync/internal/track"
)

var (
	refreshLimit      int
	refreshPage       int
	refreshNoBackfill bool
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reconcile recent plays across services and repair gaps",
	Long: `Fetch your recent plays from every enabled service, reconcile
duplicate observations of the same play, and queue replays for plays
that some services failed to record.

The reconciled list is printed immediately; backfill repairs are then
flushed before the command exits.`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().IntVar(&refreshLimit, "limit", 0, "Tracks to fetch from the primary service (default: configured page size)")
	refreshCmd.Flags().IntVar(&refreshPage, "page", 1, "Page of recent plays to reconcile")
	refreshCmd.Flags().BoolVar(&refreshNoBackfill, "no-backfill", false, "Detect gaps but do not replay them")
}

func runRefresh(cmd *cobra.Command, args []string) error {
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

	limit := refreshLimit
	if limit <= 0 {
		limit = cfg.PageSize
	}

	ctx := context.Background()

	var queue *backfill.Queue
	if !refreshNoBackfill {
		journal, err := backfill.OpenJournal(cfg.JournalPath)
		if err != nil {
			logger.Warn().Err(err).Msg("Backfill journal unavailable, continuing without it")
			journal = nil
		} else {
			defer func() { _ = journal.Close() }()
		}

		queue = backfill.NewQueue(adapters, journal, logger)
		queue.Start(ctx)
	}

	coordinator := reconcile.New(adapters, cfg, queue, logger)

	tracks, err := coordinator.Refresh(ctx, limit, refreshPage)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	printReconciled(tracks)

	if queue != nil {
		if pending := queue.Pending(); pending > 0 {
			fmt.Printf("\nBackfilling %d missing plays...\n", pending)
		}
		// Flush queued repairs before the process exits
		queue.Close()

		stats := queue.Stats()
		if stats.Succeeded+stats.Failed > 0 {
			fmt.Printf("Backfill: %d succeeded, %d failed\n", stats.Succeeded, stats.Failed)
		}
	}

	return nil
}

// printReconciled renders the reconciled track list as an aligned table.
func printReconciled(tracks []*track.Reconciled) {
	if len(tracks) == 0 {
		fmt.Println("No recent plays found.")
		return
	}

	const (
		artistWidth = 24
		trackWidth  = 32
		playedWidth = 16
	)

	fmt.Printf("%s  %s  %s  %-12s  %s\n",
		pad("PLAYED", playedWidth),
		pad("ARTIST", artistWidth),
		pad("TRACK", trackWidth),
		"STATUS",
		"SERVICES",
	)

	for _, r := range tracks {
		played := "now playing"
		if r.PlayedAt != nil {
			played = time.Unix(*r.PlayedAt, 0).Format("Jan 02 15:04")
		}

		fmt.Printf("%s  %s  %s  %-12s  %s\n",
			pad(played, playedWidth),
			pad(r.Artist, artistWidth),
			pad(r.Name, trackWidth),
			r.Status.String(),
			strings.Join(serviceNames(r), ","),
		)
	}
}

// pad truncates or fills a cell to the given display width, wide
// characters included.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// serviceNames lists the services holding an observation, sorted.
func serviceNames(r *track.Reconciled) []string {
	names := make([]string, 0, len(r.Services))
	for svc := range r.Services {
		names = append(names, svc)
	}
	sort.Strings(names)
	return names
}
