// Package service defines the adapter surface the reconciliation engine
// uses to talk to listening-history services, plus the concrete adapters
// for Last.fm, ListenBrainz, and Libre.fm.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smerrill/playsync/internal/track"
)

// Capabilities describes what a service's API can do. The engine checks
// these flags before invoking the corresponding operation; adapters
// return ErrUnsupported if called anyway.
type Capabilities struct {
	// TimeRangeQuery means the service can list plays between two
	// timestamps natively. Without it the engine falls back to a
	// bounded page-based fetch.
	TimeRangeQuery bool

	// Delete means the service exposes a per-play delete operation.
	Delete bool

	// RestrictedBackfill means the service rejects submissions for
	// plays older than the scrobble age limit (two weeks).
	RestrictedBackfill bool
}

// Adapter is the uniform interface over one service's listing, replay,
// and delete capabilities. Implementations carry their own credentials;
// the engine never sees tokens or session keys.
type Adapter interface {
	// Name returns the service identifier (lastfm, listenbrainz, librefm).
	Name() string

	// Capabilities returns the service's capability descriptor.
	Capabilities() Capabilities

	// RecentTracks lists a page of the user's recently played tracks,
	// most recent first.
	RecentTracks(ctx context.Context, limit, page int) ([]track.Record, error)

	// RecentTracksByRange lists plays between minTS and maxTS (epoch
	// seconds, inclusive). Only valid when Capabilities.TimeRangeQuery
	// is set.
	RecentTracksByRange(ctx context.Context, minTS, maxTS int64, limit int) ([]track.Record, error)

	// Replay re-submits a play the service failed to record natively.
	Replay(ctx context.Context, rec track.Record) error

	// Delete removes one recorded play. Only valid when
	// Capabilities.Delete is set.
	Delete(ctx context.Context, id track.Identifier) error
}

// ErrUnsupported is returned when an operation is invoked on a service
// whose capability descriptor does not advertise it.
var ErrUnsupported = errors.New("service: operation not supported")

// FetchError wraps a failure from one service's API. Fetch errors are
// isolated per service: the engine degrades to an empty candidate pool
// and never aborts a refresh because of one.
type FetchError struct {
	Service string
	Op      string
	Err     error
}

// Error returns the error message.
func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
