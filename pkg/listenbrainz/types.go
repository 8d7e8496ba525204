package listenbrainz

// Listen represents one listen as reported by ListenBrainz.
type Listen struct {
	ListenedAt    int64         `json:"listened_at"`
	RecordingMSID string        `json:"recording_msid,omitempty"`
	TrackMetadata TrackMetadata `json:"track_metadata"`
}

// TrackMetadata carries the track attributes of a listen.
type TrackMetadata struct {
	ArtistName  string `json:"artist_name"`
	TrackName   string `json:"track_name"`
	ReleaseName string `json:"release_name,omitempty"`
}

// ListensParams narrows a listens listing request.
type ListensParams struct {
	Count int   // Listens to return (service maximum 1000)
	MinTS int64 // Only listens after this epoch second (0 = unbounded)
	MaxTS int64 // Only listens before this epoch second (0 = unbounded)
}
