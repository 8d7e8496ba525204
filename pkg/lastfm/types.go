package lastfm

import (
	"time"
)

// Track represents a music track for scrobbling.
type Track struct {
	Artist      string // Required: Artist name
	Track       string // Required: Track name
	Album       string // Optional: Album name
	AlbumArtist string // Optional: Album artist (if different from track artist)
	Duration    int    // Optional: Track duration in seconds
	TrackNumber int    // Optional: Track number on album
	MBTrackID   string // Optional: MusicBrainz track ID
}

// Scrobble represents a single scrobble with timestamp.
type Scrobble struct {
	Track     Track     // The track being scrobbled
	Timestamp time.Time // When the track was played
}

// RecentTrack represents one entry from user.getRecentTracks.
type RecentTrack struct {
	Artist     string
	Track      string
	Album      string
	MBTrackID  string
	Timestamp  int64 // Epoch seconds; zero when the track is now playing
	NowPlaying bool
	Loved      bool
}

// RecentTracksParams narrows a user.getRecentTracks request.
type RecentTracksParams struct {
	Limit int   // Tracks per page (service maximum 200)
	Page  int   // 1-based page number
	From  int64 // Only plays after this epoch second (0 = unbounded)
	To    int64 // Only plays before this epoch second (0 = unbounded)
}

// ScrobbleResponse represents the response from track.scrobble.
type ScrobbleResponse struct {
	Accepted  int // Number of scrobbles accepted
	Ignored   int // Number of scrobbles ignored
	Scrobbles []ScrobbleResult
}

// ScrobbleResult is the per-track outcome inside a ScrobbleResponse.
type ScrobbleResult struct {
	Artist         string
	Track          string
	Album          string
	Timestamp      int64
	IgnoredMessage struct {
		Code int
		Text string
	}
}
