package lastfm

import (
	"context"
	"fmt"
	"strconv"
)

// LibraryService provides operations on the user's library.
type LibraryService struct {
	client *Client
}

// RemoveScrobble deletes one scrobble from the user's library, keyed by
// artist, track, and the exact play timestamp.
//
// Requires authentication (session key must be set via SetSessionKey).
func (s *LibraryService) RemoveScrobble(ctx context.Context, artist, track string, timestamp int64) error {
	if artist == "" || track == "" {
		return fmt.Errorf("lastfm: artist and track are required")
	}
	if timestamp <= 0 {
		return fmt.Errorf("lastfm: a play timestamp is required to remove a scrobble")
	}

	params := map[string]string{
		"artist":    artist,
		"track":     track,
		"timestamp": strconv.FormatInt(timestamp, 10),
	}

	// The response body carries no payload on success
	_, err := s.client.call(ctx, "library.removeScrobble", params, true)
	return err
}
