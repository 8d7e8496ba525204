// Package fanout propagates per-play delete requests to every service
// that recorded the play, concurrently and with independent outcomes.
package fanout

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smerrill/playsync/internal/service"
	"github.com/smerrill/playsync/internal/track"
)

// Deleter issues delete calls across services.
type Deleter struct {
	adapters map[string]service.Adapter
	logger   zerolog.Logger
}

// NewDeleter creates a Deleter over the given adapters.
func NewDeleter(adapters map[string]service.Adapter, logger zerolog.Logger) *Deleter {
	return &Deleter{
		adapters: adapters,
		logger:   logger.With().Str("component", "delete").Logger(),
	}
}

// Delete removes one logical play from every service that has a
// recorded observation of it, one concurrent call per service.
//
// Only services present in observations are targeted: deleting from a
// service that never recorded the play is a guaranteed no-op and wastes
// a rate-limited call. Each service's outcome is independent; one
// failure neither blocks nor rolls back the others. The returned map
// holds the per-service outcome (nil on success).
func (d *Deleter) Delete(ctx context.Context, artist, name string, observations map[string]track.Observation) map[string]error {
	results := make(map[string]error, len(observations))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for svc, obs := range observations {
		adapter, ok := d.adapters[svc]
		if !ok {
			// Service disabled since the observation was recorded
			continue
		}
		if !adapter.Capabilities().Delete {
			mu.Lock()
			results[svc] = service.ErrUnsupported
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(svc string, adapter service.Adapter, obs track.Observation) {
			defer wg.Done()

			id := track.Identifier{
				Artist:     artist,
				Track:      name,
				Timestamp:  obs.Timestamp,
				ExternalID: obs.ExternalID,
			}

			err := adapter.Delete(ctx, id)
			if err != nil {
				d.logger.Warn().Err(err).Str("service", svc).Str("track", name).Msg("Delete failed")
			} else {
				d.logger.Info().Str("service", svc).Str("track", name).Msg("Deleted play")
			}

			mu.Lock()
			results[svc] = err
			mu.Unlock()
		}(svc, adapter, obs)
	}

	wg.Wait()
	return results
}
