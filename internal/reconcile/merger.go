package reconcile

import (
	"github.com/smerrill/playsync/internal/track"
)

// Merge folds a matched record into a reconciled entry.
//
// Precedence: if the matched record comes from the preferred service,
// its attributes become the base; otherwise the accumulated base stays.
// Either way the matched service's observation is upserted by key -
// entries already present for other services are never removed.
func Merge(r *track.Reconciled, match track.Record, preferredService string) {
	if match.Source == preferredService {
		r.Record = match
	}

	r.Observe(match.Source, track.Observation{
		Timestamp:  match.PlayedAt,
		ExternalID: match.ExternalID,
	})
}
