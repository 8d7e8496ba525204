package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smerrill/playsync/internal/config"
	"github.com/smerrill/playsync/internal/track"
	"github.com/smerrill/playsync/pkg/lastfm"
)

// audioscrobbler adapts a Last.fm-protocol service (Last.fm itself, or
// Libre.fm which speaks the same wire format) to the Adapter interface.
type audioscrobbler struct {
	name     string
	caps     Capabilities
	client   *lastfm.Client
	username string
}

// NewLastFM creates the Last.fm adapter from a credential snapshot plus
// the service's API key material.
func NewLastFM(cred config.Credential, sc config.ServiceConfig) (Adapter, error) {
	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:     sc.APIKey,
		APISecret:  sc.APISecret,
		SessionKey: cred.SessionKey,
		BaseURL:    sc.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("lastfm adapter: %w", err)
	}

	return &audioscrobbler{
		name: "lastfm",
		caps: Capabilities{
			TimeRangeQuery:     true,
			Delete:             true,
			RestrictedBackfill: true,
		},
		client:   client,
		username: cred.Username,
	}, nil
}

// NewLibreFM creates the Libre.fm adapter. Libre.fm is wire-compatible
// with the Last.fm API but its recent-tracks endpoint ignores the
// from/to window, so the adapter does not advertise range queries.
func NewLibreFM(cred config.Credential, sc config.ServiceConfig) (Adapter, error) {
	baseURL := sc.BaseURL
	if baseURL == "" {
		baseURL = lastfm.LibreFMBaseURL
	}

	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:     sc.APIKey,
		APISecret:  sc.APISecret,
		SessionKey: cred.SessionKey,
		BaseURL:    baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("librefm adapter: %w", err)
	}

	return &audioscrobbler{
		name: "librefm",
		caps: Capabilities{
			TimeRangeQuery:     false,
			Delete:             true,
			RestrictedBackfill: true,
		},
		client:   client,
		username: cred.Username,
	}, nil
}

func (a *audioscrobbler) Name() string {
	return a.name
}

func (a *audioscrobbler) Capabilities() Capabilities {
	return a.caps
}

func (a *audioscrobbler) RecentTracks(ctx context.Context, limit, page int) ([]track.Record, error) {
	recent, err := a.client.User().RecentTracks(ctx, a.username, lastfm.RecentTracksParams{
		Limit: limit,
		Page:  page,
	})
	if err != nil {
		return nil, &FetchError{Service: a.name, Op: "recent tracks", Err: err}
	}
	return a.convert(recent), nil
}

func (a *audioscrobbler) RecentTracksByRange(ctx context.Context, minTS, maxTS int64, limit int) ([]track.Record, error) {
	if !a.caps.TimeRangeQuery {
		return nil, ErrUnsupported
	}

	recent, err := a.client.User().RecentTracks(ctx, a.username, lastfm.RecentTracksParams{
		Limit: limit,
		From:  minTS,
		To:    maxTS,
	})
	if err != nil {
		return nil, &FetchError{Service: a.name, Op: "recent tracks by range", Err: err}
	}
	return a.convert(recent), nil
}

func (a *audioscrobbler) Replay(ctx context.Context, rec track.Record) error {
	if rec.PlayedAt == nil {
		return fmt.Errorf("%s: cannot replay a track without a play timestamp", a.name)
	}

	resp, err := a.client.Scrobble().Scrobble(ctx, lastfm.Track{
		Artist: rec.Artist,
		Track:  rec.Name,
		Album:  rec.Album,
	}, time.Unix(*rec.PlayedAt, 0))
	if err != nil {
		return &FetchError{Service: a.name, Op: "replay", Err: err}
	}

	if resp.Ignored > 0 {
		msg := "scrobble was ignored"
		if len(resp.Scrobbles) > 0 && resp.Scrobbles[0].IgnoredMessage.Text != "" {
			msg = resp.Scrobbles[0].IgnoredMessage.Text
		}
		return &FetchError{Service: a.name, Op: "replay", Err: fmt.Errorf("%s", msg)}
	}

	return nil
}

func (a *audioscrobbler) Delete(ctx context.Context, id track.Identifier) error {
	if id.Timestamp == nil {
		return fmt.Errorf("%s: cannot delete a scrobble without a play timestamp", a.name)
	}

	if err := a.client.Library().RemoveScrobble(ctx, id.Artist, id.Track, *id.Timestamp); err != nil {
		return &FetchError{Service: a.name, Op: "delete", Err: err}
	}
	return nil
}

// convert maps wire-format recent tracks onto engine records.
func (a *audioscrobbler) convert(recent []lastfm.RecentTrack) []track.Record {
	records := make([]track.Record, 0, len(recent))
	for _, rt := range recent {
		rec := track.Record{
			Artist: rt.Artist,
			Name:   rt.Track,
			Album:  rt.Album,
			Loved:  rt.Loved,
			Source: a.name,
		}
		if !rt.NowPlaying {
			ts := rt.Timestamp
			rec.PlayedAt = &ts
		}
		records = append(records, rec)
	}
	return records
}
