// Package backfill repairs gaps detected by the reconciliation engine:
// plays that one service recorded but another did not are replayed to
// the service that missed them, one at a time, at a pace the
// third-party APIs tolerate.
package backfill

import (
	"time"

	"github.com/smerrill/playsync/internal/service"
	"github.com/smerrill/playsync/internal/track"
)

// MaxAge is how old a play may be and still be accepted by services
// with a restricted submission window (the audioscrobbler two-week
// rule).
const MaxAge = 14 * 24 * time.Hour

// Eligible reports whether a play can be replayed to a service with
// the given capabilities. A track with no play timestamp (currently
// playing) is never eligible; services without a restricted window
// accept plays of any age.
func Eligible(rec track.Record, caps service.Capabilities, now time.Time) bool {
	if rec.PlayedAt == nil {
		return false
	}
	if !caps.RestrictedBackfill {
		return true
	}
	return now.Sub(time.Unix(*rec.PlayedAt, 0)) <= MaxAge
}
