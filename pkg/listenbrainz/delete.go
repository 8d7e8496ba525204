package listenbrainz

import (
	"context"
	"fmt"
)

// DeleteListen removes one listen, keyed by its listened_at timestamp
// and recording MSID (returned by Listens).
//
// Requires a user token. Deletion is applied asynchronously on the
// service side; a successful response means the request was accepted.
func (c *Client) DeleteListen(ctx context.Context, listenedAt int64, recordingMSID string) error {
	if listenedAt <= 0 {
		return fmt.Errorf("listenbrainz: listened_at is required")
	}
	if recordingMSID == "" {
		return fmt.Errorf("listenbrainz: recording_msid is required")
	}

	body := struct {
		ListenedAt    int64  `json:"listened_at"`
		RecordingMSID string `json:"recording_msid"`
	}{
		ListenedAt:    listenedAt,
		RecordingMSID: recordingMSID,
	}

	return c.post(ctx, "/1/delete-listen", body, nil)
}
