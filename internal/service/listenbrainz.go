package service

import (
	"context"
	"fmt"

	"github.com/smerrill/playsync/internal/config"
	"github.com/smerrill/playsync/internal/track"
	"github.com/smerrill/playsync/pkg/listenbrainz"
)

// listenBrainz adapts the ListenBrainz API to the Adapter interface.
type listenBrainz struct {
	client   *listenbrainz.Client
	username string
}

// NewListenBrainz creates the ListenBrainz adapter from a credential
// snapshot.
func NewListenBrainz(cred config.Credential, sc config.ServiceConfig) (Adapter, error) {
	client := listenbrainz.NewClient(listenbrainz.Config{
		Token:   cred.Token,
		BaseURL: sc.BaseURL,
	})

	return &listenBrainz{
		client:   client,
		username: cred.Username,
	}, nil
}

func (l *listenBrainz) Name() string {
	return "listenbrainz"
}

func (l *listenBrainz) Capabilities() Capabilities {
	return Capabilities{
		TimeRangeQuery: true,
		Delete:         true,
		// ListenBrainz accepts listens of any age
		RestrictedBackfill: false,
	}
}

func (l *listenBrainz) RecentTracks(ctx context.Context, limit, page int) ([]track.Record, error) {
	// The listens endpoint has no page parameter; page size alone bounds
	// the fetch. Pages past the first are empty.
	if page > 1 {
		return nil, nil
	}

	listens, err := l.client.Listens(ctx, l.username, listenbrainz.ListensParams{Count: limit})
	if err != nil {
		return nil, &FetchError{Service: l.Name(), Op: "recent tracks", Err: err}
	}
	return l.convert(listens), nil
}

func (l *listenBrainz) RecentTracksByRange(ctx context.Context, minTS, maxTS int64, limit int) ([]track.Record, error) {
	listens, err := l.client.Listens(ctx, l.username, listenbrainz.ListensParams{
		Count: limit,
		MinTS: minTS,
		MaxTS: maxTS,
	})
	if err != nil {
		return nil, &FetchError{Service: l.Name(), Op: "recent tracks by range", Err: err}
	}
	return l.convert(listens), nil
}

func (l *listenBrainz) Replay(ctx context.Context, rec track.Record) error {
	if rec.PlayedAt == nil {
		return fmt.Errorf("listenbrainz: cannot replay a track without a play timestamp")
	}

	err := l.client.SubmitListen(ctx, listenbrainz.Listen{
		ListenedAt: *rec.PlayedAt,
		TrackMetadata: listenbrainz.TrackMetadata{
			ArtistName:  rec.Artist,
			TrackName:   rec.Name,
			ReleaseName: rec.Album,
		},
	})
	if err != nil {
		return &FetchError{Service: l.Name(), Op: "replay", Err: err}
	}
	return nil
}

func (l *listenBrainz) Delete(ctx context.Context, id track.Identifier) error {
	if id.Timestamp == nil || id.ExternalID == "" {
		return fmt.Errorf("listenbrainz: deleting a listen requires its timestamp and recording MSID")
	}

	if err := l.client.DeleteListen(ctx, *id.Timestamp, id.ExternalID); err != nil {
		return &FetchError{Service: l.Name(), Op: "delete", Err: err}
	}
	return nil
}

// convert maps listens onto engine records. ListenBrainz timestamps are
// always present; the recording MSID rides along as the external id so
// deletes can target the exact listen.
func (l *listenBrainz) convert(listens []listenbrainz.Listen) []track.Record {
	records := make([]track.Record, 0, len(listens))
	for _, ln := range listens {
		ts := ln.ListenedAt
		records = append(records, track.Record{
			Artist:     ln.TrackMetadata.ArtistName,
			Name:       ln.TrackMetadata.TrackName,
			Album:      ln.TrackMetadata.ReleaseName,
			PlayedAt:   &ts,
			Source:     l.Name(),
			ExternalID: ln.RecordingMSID,
		})
	}
	return records
}
