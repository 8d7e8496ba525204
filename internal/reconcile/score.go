package reconcile

import (
	"github.com/xrash/smetrics"

	"github.com/smerrill/playsync/internal/track"
)

// Similarity computes a normalized similarity in [0,1] between two
// strings using Levenshtein edit distance: 1 - distance/maxLength.
// Inputs are normalized before comparison, so "Beck" and " beck "
// score 1.0.
func Similarity(a, b string) float64 {
	a = Normalize(a)
	b = Normalize(b)

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := smetrics.WagnerFischer(a, b, 1, 1, 1)
	score := 1.0 - float64(distance)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

// Score combines artist and track-name similarity into one match score,
// weighted equally. Pure and deterministic for given inputs.
func Score(a, b track.Record) float64 {
	return 0.5*Similarity(a.Artist, b.Artist) + 0.5*Similarity(a.Name, b.Name)
}
