package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smerrill/playsync/internal/backfill"
	"github.com/smerrill/playsync/internal/config"
	"github.com/smerrill/playsync/internal/service"
	"github.com/smerrill/playsync/internal/track"
)

// fetchMultiplier widens page-based candidate fetches for services
// without native range queries, so the pool covers the primary span
// even when the services disagree on ordering.
const fetchMultiplier = 3

// Coordinator orchestrates one refresh: fetch, match, merge, status,
// and backfill enqueue. A Coordinator owns its in-progress reconciled
// list for the duration of one refresh; concurrent refreshes on the
// same Coordinator are not supported.
type Coordinator struct {
	adapters map[string]service.Adapter
	cfg      *config.Config
	queue    *backfill.Queue // optional; nil disables gap repair
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a Coordinator. All collaborators are injected; the
// backfill queue may be nil.
func New(adapters map[string]service.Adapter, cfg *config.Config, queue *backfill.Queue, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		adapters: adapters,
		cfg:      cfg,
		queue:    queue,
		logger:   logger.With().Str("component", "coordinator").Logger(),
		now:      time.Now,
	}
}

// Refresh runs one reconciliation pass and returns the reconciled
// track list. Backfill of detected gaps proceeds asynchronously and
// never blocks the return.
//
// Failures degrade rather than abort: no preferred service yields an
// empty result, and a failing service contributes an empty candidate
// pool.
func (c *Coordinator) Refresh(ctx context.Context, limit, page int) ([]*track.Reconciled, error) {
	preferred, ok := c.cfg.Preferred()
	if !ok {
		c.logger.Warn().Msg("No preferred service configured, nothing to reconcile")
		return nil, nil
	}

	primary, ok := c.adapters[preferred.Service]
	if !ok {
		c.logger.Warn().Str("service", preferred.Service).Msg("Preferred service has no adapter")
		return nil, nil
	}

	primaryTracks, err := primary.RecentTracks(ctx, limit, page)
	if err != nil {
		c.logger.Warn().Err(err).Str("service", preferred.Service).Msg("Primary fetch failed")
		return nil, nil
	}
	if len(primaryTracks) == 0 {
		return nil, nil
	}

	secondaries := c.secondaries(preferred.Service)
	pools := c.fetchPools(ctx, secondaries, primaryTracks, limit)

	reconciled := make([]*track.Reconciled, len(primaryTracks))
	for i, rec := range primaryTracks {
		reconciled[i] = track.NewReconciled(rec)
	}

	// Each secondary pass mutates entries produced by the previous
	// pass, so the fold over services is strictly sequential to keep
	// merge precedence deterministic.
	for _, name := range secondaries {
		pool := pools[name]
		caps := c.adapters[name].Capabilities()

		for _, r := range reconciled {
			match, found := BestMatch(r.Record, pool)
			if found {
				Merge(r, match, preferred.Service)
				continue
			}

			c.enqueueRepair(r.Record, name, caps)
		}
	}

	enabled := c.cfg.EnabledServices()
	for _, r := range reconciled {
		r.Status = ComputeStatus(r, enabled)
	}

	return reconciled, nil
}

// secondaries lists the enabled services other than the primary, in a
// fixed order so merge passes are deterministic.
func (c *Coordinator) secondaries(primary string) []string {
	var names []string
	for _, name := range c.cfg.EnabledServices() {
		if name == primary {
			continue
		}
		if _, ok := c.adapters[name]; !ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fetchPools fetches every secondary's candidate pool concurrently and
// joins before matching begins. A failing fetch is isolated: that
// service contributes an empty pool.
func (c *Coordinator) fetchPools(ctx context.Context, secondaries []string, primaryTracks []track.Record, limit int) map[string][]track.Record {
	minTS, maxTS, haveSpan := timestampSpan(primaryTracks)

	pools := make(map[string][]track.Record, len(secondaries))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range secondaries {
		adapter := c.adapters[name]

		wg.Add(1)
		go func(name string, adapter service.Adapter) {
			defer wg.Done()

			pool, err := c.fetchPool(ctx, adapter, minTS, maxTS, haveSpan, limit)
			if err != nil {
				c.logger.Warn().Err(err).Str("service", name).Msg("Candidate fetch failed, treating as empty")
				pool = nil
			}

			mu.Lock()
			pools[name] = pool
			mu.Unlock()
		}(name, adapter)
	}

	wg.Wait()
	return pools
}

// fetchPool fetches one service's candidate pool: the primary's exact
// timestamp span when the service supports range queries, otherwise a
// bounded page-based fetch widened by fetchMultiplier.
func (c *Coordinator) fetchPool(ctx context.Context, adapter service.Adapter, minTS, maxTS int64, haveSpan bool, limit int) ([]track.Record, error) {
	if haveSpan && adapter.Capabilities().TimeRangeQuery {
		// Pad by the match window so borderline candidates are not cut
		// off by the service-side filter
		return adapter.RecentTracksByRange(ctx, minTS-TimestampWindow, maxTS+TimestampWindow, limit*fetchMultiplier)
	}
	return adapter.RecentTracks(ctx, limit*fetchMultiplier, 1)
}

// enqueueRepair queues a backfill task for a primary track the given
// service has no observation of, subject to eligibility.
func (c *Coordinator) enqueueRepair(rec track.Record, target string, caps service.Capabilities) {
	if c.queue == nil {
		return
	}
	if !backfill.Eligible(rec, caps, c.now()) {
		return
	}

	c.queue.Enqueue(backfill.Task{
		Track:  rec,
		Target: target,
		Reason: "missing from " + target,
	})
}

// timestampSpan returns the min and max play timestamps across the
// primary page. haveSpan is false when no track carries a timestamp
// (e.g. a single now-playing entry).
func timestampSpan(tracks []track.Record) (minTS, maxTS int64, haveSpan bool) {
	for _, rec := range tracks {
		if rec.PlayedAt == nil {
			continue
		}
		ts := *rec.PlayedAt
		if !haveSpan {
			minTS, maxTS = ts, ts
			haveSpan = true
			continue
		}
		if ts < minTS {
			minTS = ts
		}
		if ts > maxTS {
			maxTS = ts
		}
	}
	return minTS, maxTS, haveSpan
}
