package lastfm

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// UserService provides read operations on a user's listening history.
type UserService struct {
	client *Client
}

// RecentTracks fetches a page of the user's recently played tracks,
// most recent first. Set From/To in params to restrict the window to a
// timestamp range (the service treats both bounds as epoch seconds).
//
// A currently playing track is returned with NowPlaying set and no
// timestamp.
func (s *UserService) RecentTracks(ctx context.Context, user string, p RecentTracksParams) ([]RecentTrack, error) {
	if user == "" {
		return nil, fmt.Errorf("lastfm: user is required")
	}

	params := map[string]string{
		"user":     user,
		"extended": "1", // include the loved flag
	}
	if p.Limit > 0 {
		params["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Page > 0 {
		params["page"] = strconv.Itoa(p.Page)
	}
	if p.From > 0 {
		params["from"] = strconv.FormatInt(p.From, 10)
	}
	if p.To > 0 {
		params["to"] = strconv.FormatInt(p.To, 10)
	}

	resp, err := s.client.call(ctx, "user.getRecentTracks", params, false)
	if err != nil {
		return nil, err
	}

	tracks, err := unmarshalRecentTracks(resp)
	if err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse recent tracks response: %w", err)
	}

	return tracks, nil
}

// recentTracksResponse represents the XML response from user.getRecentTracks.
//
// With extended=1 the artist element carries a nested name element
// instead of chardata.
type recentTracksResponse struct {
	Tracks []struct {
		NowPlaying string `xml:"nowplaying,attr"`
		Artist     struct {
			Name     string `xml:"name"`
			Chardata string `xml:",chardata"`
		} `xml:"artist"`
		Name  string `xml:"name"`
		MBID  string `xml:"mbid"`
		Album struct {
			Name string `xml:",chardata"`
		} `xml:"album"`
		Loved string `xml:"loved"`
		Date  struct {
			UTS string `xml:"uts,attr"`
		} `xml:"date"`
	} `xml:"recenttracks>track"`
}

// unmarshalRecentTracks parses the XML response from user.getRecentTracks.
func unmarshalRecentTracks(data []byte) ([]RecentTrack, error) {
	wrapped := []byte("<root>" + string(data) + "</root>")

	var resp recentTracksResponse
	if err := xml.Unmarshal(wrapped, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recent tracks response: %w", err)
	}

	tracks := make([]RecentTrack, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		rt := RecentTrack{
			Track:      t.Name,
			Album:      t.Album.Name,
			MBTrackID:  t.MBID,
			NowPlaying: t.NowPlaying == "true",
			Loved:      t.Loved == "1",
		}

		rt.Artist = t.Artist.Name
		if rt.Artist == "" {
			rt.Artist = strings.TrimSpace(t.Artist.Chardata)
		}

		if t.Date.UTS != "" {
			uts, err := strconv.ParseInt(t.Date.UTS, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid uts %q: %w", t.Date.UTS, err)
			}
			rt.Timestamp = uts
		}

		tracks = append(tracks, rt)
	}

	return tracks, nil
}
