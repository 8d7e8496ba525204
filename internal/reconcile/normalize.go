// Package reconcile implements the reconciliation engine: it joins the
// recent plays reported by several listening-history services into one
// logical record per real-world play, tracks which services have
// recorded each play, and hands detected gaps to the backfill queue.
package reconcile

import "strings"

// TimestampWindow is the sole temporal tolerance for treating two
// observations as the same play, in seconds. It absorbs clock skew and
// per-service timestamp truncation without merging genuinely distinct
// plays of the same song.
const TimestampWindow = 120

// Normalize prepares a string for comparison: trimmed and lowercased.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TimestampsMatch reports whether two play timestamps refer to the same
// play: both absent (both currently playing) matches, exactly one
// absent never matches, and both present match within TimestampWindow.
func TimestampsMatch(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return timestampDelta(a, b) < TimestampWindow
}

// timestampDelta returns |a-b| in seconds, or zero when either side is
// absent.
func timestampDelta(a, b *int64) int64 {
	if a == nil || b == nil {
		return 0
	}
	d := *a - *b
	if d < 0 {
		d = -d
	}
	return d
}
