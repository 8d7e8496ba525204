package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smerrill/playsync/internal/backfill"
	"github.com/smerrill/playsync/internal/config"
	"github.com/smerrill/playsync/internal/service"
	"github.com/smerrill/playsync/internal/track"
)

// fakeAdapter is an in-memory Adapter for coordinator tests.
type fakeAdapter struct {
	name     string
	caps     service.Capabilities
	page     []track.Record
	ranged   []track.Record
	fetchErr error

	mu         sync.Mutex
	pageCalls  int
	rangeCalls int
	pageLimit  int
	rangeMin   int64
	rangeMax   int64
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Capabilities() service.Capabilities { return f.caps }

func (f *fakeAdapter) RecentTracks(ctx context.Context, limit, page int) ([]track.Record, error) {
	f.mu.Lock()
	f.pageCalls++
	f.pageLimit = limit
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.page, nil
}

func (f *fakeAdapter) RecentTracksByRange(ctx context.Context, minTS, maxTS int64, limit int) ([]track.Record, error) {
	f.mu.Lock()
	f.rangeCalls++
	f.rangeMin = minTS
	f.rangeMax = maxTS
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.ranged, nil
}

func (f *fakeAdapter) Replay(ctx context.Context, rec track.Record) error { return nil }

func (f *fakeAdapter) Delete(ctx context.Context, id track.Identifier) error { return nil }

func testConfig(main string, enabled ...string) *config.Config {
	cfg := &config.Config{
		MainService: main,
		PageSize:    50,
		Services:    make(map[string]config.ServiceConfig),
	}
	for _, name := range enabled {
		cfg.Services[name] = config.ServiceConfig{Enabled: true}
	}
	return cfg
}

func rec(artist, name string, playedAt int64, source string) track.Record {
	return track.Record{Artist: artist, Name: name, PlayedAt: ts(playedAt), Source: source}
}

func TestRefreshNoPreferredService(t *testing.T) {
	cfg := testConfig("", "lastfm", "listenbrainz")
	adapters := map[string]service.Adapter{
		"lastfm":       &fakeAdapter{name: "lastfm"},
		"listenbrainz": &fakeAdapter{name: "listenbrainz"},
	}

	c := New(adapters, cfg, nil, zerolog.Nop())
	got, err := c.Refresh(context.Background(), 50, 1)
	if err != nil {
		t.Fatalf("expected soft failure, got error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result without a preferred service, got %d tracks", len(got))
	}
}

func TestRefreshMergesAcrossServices(t *testing.T) {
	primary := &fakeAdapter{
		name: "listenbrainz",
		caps: service.Capabilities{TimeRangeQuery: true},
		page: []track.Record{rec("Beck", "Profanity Prayers", 1000, "listenbrainz")},
	}
	secondary := &fakeAdapter{
		name:   "lastfm",
		caps:   service.Capabilities{TimeRangeQuery: true, Delete: true, RestrictedBackfill: true},
		ranged: []track.Record{rec("beck", "profanity prayers ", 1050, "lastfm")},
	}

	cfg := testConfig("listenbrainz", "listenbrainz", "lastfm")
	adapters := map[string]service.Adapter{"listenbrainz": primary, "lastfm": secondary}

	c := New(adapters, cfg, nil, zerolog.Nop())
	got, err := c.Refresh(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 reconciled track, got %d", len(got))
	}

	r := got[0]
	if !r.ObservedBy("listenbrainz") || !r.ObservedBy("lastfm") {
		t.Errorf("expected observations from both services, got %v", r.Services)
	}
	if r.Status != track.StatusSynced {
		t.Errorf("expected synced with both services covered, got %v", r.Status)
	}

	// Range-capable secondary must be queried over the primary's padded span
	if secondary.rangeCalls != 1 {
		t.Fatalf("expected 1 range fetch, got %d", secondary.rangeCalls)
	}
	if secondary.rangeMin != 1000-TimestampWindow || secondary.rangeMax != 1000+TimestampWindow {
		t.Errorf("unexpected range window: [%d, %d]", secondary.rangeMin, secondary.rangeMax)
	}
}

func TestRefreshThirdServiceMissing(t *testing.T) {
	primary := &fakeAdapter{
		name: "listenbrainz",
		caps: service.Capabilities{TimeRangeQuery: true},
		page: []track.Record{rec("Beck", "Profanity Prayers", 1000, "listenbrainz")},
	}
	lastfm := &fakeAdapter{
		name:   "lastfm",
		caps:   service.Capabilities{TimeRangeQuery: true},
		ranged: []track.Record{rec("beck", "profanity prayers ", 1050, "lastfm")},
	}
	librefm := &fakeAdapter{name: "librefm"}

	cfg := testConfig("listenbrainz", "listenbrainz", "lastfm", "librefm")
	adapters := map[string]service.Adapter{"listenbrainz": primary, "lastfm": lastfm, "librefm": librefm}

	c := New(adapters, cfg, nil, zerolog.Nop())
	got, err := c.Refresh(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 reconciled track, got %d", len(got))
	}
	if got[0].Status != track.StatusPartial {
		t.Errorf("expected partial with one service missing, got %v", got[0].Status)
	}

	// librefm has no range support: bounded page fetch with the multiplier
	if librefm.pageCalls != 1 {
		t.Fatalf("expected 1 page fetch for librefm, got %d", librefm.pageCalls)
	}
	if librefm.pageLimit != 10*fetchMultiplier {
		t.Errorf("expected widened page limit %d, got %d", 10*fetchMultiplier, librefm.pageLimit)
	}
}

func TestRefreshIsolatesFailingSecondary(t *testing.T) {
	primary := &fakeAdapter{
		name: "listenbrainz",
		page: []track.Record{rec("Beck", "Loser", 1000, "listenbrainz")},
	}
	broken := &fakeAdapter{
		name:     "lastfm",
		caps:     service.Capabilities{TimeRangeQuery: true},
		fetchErr: errors.New("boom"),
	}

	cfg := testConfig("listenbrainz", "listenbrainz", "lastfm")
	adapters := map[string]service.Adapter{"listenbrainz": primary, "lastfm": broken}

	c := New(adapters, cfg, nil, zerolog.Nop())
	got, err := c.Refresh(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("a failing secondary must not abort the refresh: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 reconciled track, got %d", len(got))
	}
	if got[0].Status != track.StatusPrimaryOnly {
		t.Errorf("expected primary-only after secondary failure, got %v", got[0].Status)
	}
}

func TestRefreshEnqueuesBackfillForGaps(t *testing.T) {
	now := time.Now()
	recent := now.Add(-1 * time.Hour).Unix()

	primary := &fakeAdapter{
		name: "listenbrainz",
		page: []track.Record{
			rec("Beck", "Loser", recent, "listenbrainz"),
			rec("Beck", "Devils Haircut", recent+300, "listenbrainz"),
		},
	}
	secondary := &fakeAdapter{
		name: "lastfm",
		caps: service.Capabilities{TimeRangeQuery: true, RestrictedBackfill: true},
	}

	cfg := testConfig("listenbrainz", "listenbrainz", "lastfm")
	adapters := map[string]service.Adapter{"listenbrainz": primary, "lastfm": secondary}

	// Unstarted queue: tasks accumulate without being drained
	queue := backfill.NewQueue(adapters, nil, zerolog.Nop())

	c := New(adapters, cfg, queue, zerolog.Nop())
	if _, err := c.Refresh(context.Background(), 10, 1); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if got := queue.Pending(); got != 2 {
		t.Errorf("expected one backfill task per uncovered primary track, got %d", got)
	}
}

func TestRefreshSkipsIneligibleBackfill(t *testing.T) {
	now := time.Now()
	old := now.Add(-20 * 24 * time.Hour).Unix()

	primary := &fakeAdapter{
		name: "listenbrainz",
		page: []track.Record{rec("Beck", "Loser", old, "listenbrainz")},
	}
	restrictive := &fakeAdapter{
		name: "lastfm",
		caps: service.Capabilities{TimeRangeQuery: true, RestrictedBackfill: true},
	}

	cfg := testConfig("listenbrainz", "listenbrainz", "lastfm")
	adapters := map[string]service.Adapter{"listenbrainz": primary, "lastfm": restrictive}

	queue := backfill.NewQueue(adapters, nil, zerolog.Nop())
	c := New(adapters, cfg, queue, zerolog.Nop())
	c.now = func() time.Time { return now }

	if _, err := c.Refresh(context.Background(), 10, 1); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if got := queue.Pending(); got != 0 {
		t.Errorf("expected no task for a 20-day-old play on a restrictive service, got %d", got)
	}
}
