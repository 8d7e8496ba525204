package lastfm

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"
)

// ScrobbleService provides scrobbling operations.
type ScrobbleService struct {
	client *Client
}

const (
	// MaxBatchSize is the maximum number of scrobbles allowed in a single batch.
	MaxBatchSize = 50
)

// Scrobble submits a single scrobble.
//
// Requires authentication (session key must be set via SetSessionKey).
// The service rejects scrobbles older than two weeks.
func (s *ScrobbleService) Scrobble(ctx context.Context, track Track, timestamp time.Time) (*ScrobbleResponse, error) {
	return s.ScrobbleBatch(ctx, []Scrobble{{Track: track, Timestamp: timestamp}})
}

// ScrobbleBatch submits multiple scrobbles in a single request.
//
// Up to 50 scrobbles can be submitted at once. If more than 50 scrobbles
// are provided, only the first 50 will be submitted.
//
// Requires authentication (session key must be set via SetSessionKey).
func (s *ScrobbleService) ScrobbleBatch(ctx context.Context, scrobbles []Scrobble) (*ScrobbleResponse, error) {
	if len(scrobbles) == 0 {
		return &ScrobbleResponse{}, nil
	}
	if len(scrobbles) > MaxBatchSize {
		scrobbles = scrobbles[:MaxBatchSize]
	}

	params := map[string]string{}

	// Batch parameters use indexed keys
	for i, scrobble := range scrobbles {
		idx := fmt.Sprintf("[%d]", i)
		params["artist"+idx] = scrobble.Track.Artist
		params["track"+idx] = scrobble.Track.Track
		params["timestamp"+idx] = fmt.Sprintf("%d", scrobble.Timestamp.Unix())

		if scrobble.Track.Album != "" {
			params["album"+idx] = scrobble.Track.Album
		}
		if scrobble.Track.AlbumArtist != "" {
			params["albumArtist"+idx] = scrobble.Track.AlbumArtist
		}
		if scrobble.Track.Duration > 0 {
			params["duration"+idx] = fmt.Sprintf("%d", scrobble.Track.Duration)
		}
		if scrobble.Track.TrackNumber > 0 {
			params["trackNumber"+idx] = fmt.Sprintf("%d", scrobble.Track.TrackNumber)
		}
		if scrobble.Track.MBTrackID != "" {
			params["mbid"+idx] = scrobble.Track.MBTrackID
		}
	}

	resp, err := s.client.call(ctx, "track.scrobble", params, true)
	if err != nil {
		return nil, err
	}

	scrobbleResp, err := unmarshalScrobbles(resp)
	if err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse scrobble response: %w", err)
	}

	return scrobbleResp, nil
}

// scrobbleResponse represents the XML response from track.scrobble.
type scrobbleResponse struct {
	Scrobbles struct {
		Accepted  string `xml:"accepted,attr"`
		Ignored   string `xml:"ignored,attr"`
		Scrobbles []struct {
			Artist         string `xml:"artist"`
			Track          string `xml:"track"`
			Album          string `xml:"album"`
			Timestamp      string `xml:"timestamp"`
			IgnoredMessage struct {
				Code int    `xml:"code,attr"`
				Text string `xml:",chardata"`
			} `xml:"ignoredMessage"`
		} `xml:"scrobble"`
	} `xml:"scrobbles"`
}

// unmarshalScrobbles parses the XML response from track.scrobble.
func unmarshalScrobbles(data []byte) (*ScrobbleResponse, error) {
	// Wrap inner XML in root element for proper unmarshaling
	wrapped := []byte("<root>" + string(data) + "</root>")

	var resp scrobbleResponse
	if err := xml.Unmarshal(wrapped, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scrobble response: %w", err)
	}

	accepted := 0
	ignored := 0
	if resp.Scrobbles.Accepted != "" {
		fmt.Sscanf(resp.Scrobbles.Accepted, "%d", &accepted)
	}
	if resp.Scrobbles.Ignored != "" {
		fmt.Sscanf(resp.Scrobbles.Ignored, "%d", &ignored)
	}

	result := &ScrobbleResponse{
		Accepted:  accepted,
		Ignored:   ignored,
		Scrobbles: make([]ScrobbleResult, len(resp.Scrobbles.Scrobbles)),
	}

	for i, s := range resp.Scrobbles.Scrobbles {
		var timestamp int64
		if s.Timestamp != "" {
			fmt.Sscanf(s.Timestamp, "%d", &timestamp)
		}

		result.Scrobbles[i].Artist = s.Artist
		result.Scrobbles[i].Track = s.Track
		result.Scrobbles[i].Album = s.Album
		result.Scrobbles[i].Timestamp = timestamp
		result.Scrobbles[i].IgnoredMessage.Code = s.IgnoredMessage.Code
		result.Scrobbles[i].IgnoredMessage.Text = s.IgnoredMessage.Text
	}

	return result, nil
}
