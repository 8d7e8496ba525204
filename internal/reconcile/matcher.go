package reconcile

import (
	"github.com/smerrill/playsync/internal/track"
)

// MatchThreshold is the minimum combined score for two records to be
// considered observations of the same play.
const MatchThreshold = 0.8

// BestMatch pairs a record against candidates from a single other
// service and returns the best match, if any:
//
//  1. Candidates whose timestamps fall outside TimestampWindow are
//     discarded regardless of name similarity.
//  2. Remaining candidates are scored; only scores >= MatchThreshold
//     are accepted.
//  3. The highest score wins. Exact score ties are broken by the
//     smallest timestamp delta, then by input order.
//
// Matching is directional and never chains across more than two
// services in one pass.
func BestMatch(rec track.Record, candidates []track.Record) (track.Record, bool) {
	bestIdx := -1
	var bestScore float64
	var bestDelta int64

	for i, cand := range candidates {
		if !TimestampsMatch(rec.PlayedAt, cand.PlayedAt) {
			continue
		}

		score := Score(rec, cand)
		if score < MatchThreshold {
			continue
		}

		delta := timestampDelta(rec.PlayedAt, cand.PlayedAt)
		if bestIdx == -1 || score > bestScore || (score == bestScore && delta < bestDelta) {
			bestIdx = i
			bestScore = score
			bestDelta = delta
		}
	}

	if bestIdx == -1 {
		return track.Record{}, false
	}
	return candidates[bestIdx], true
}
