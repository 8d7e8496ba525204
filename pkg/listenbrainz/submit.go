package listenbrainz

import (
	"context"
	"fmt"
)

// listenType values accepted by the submission endpoint.
const (
	listenTypeSingle = "single"
	listenTypeImport = "import"
)

// SubmitListen submits a single listen.
//
// Requires a user token. ListenBrainz accepts listens of any age, so
// this is also the path used to backfill historical plays.
func (c *Client) SubmitListen(ctx context.Context, listen Listen) error {
	return c.submit(ctx, listenTypeSingle, []Listen{listen})
}

// SubmitListens submits a batch of listens as an import.
//
// Requires a user token.
func (c *Client) SubmitListens(ctx context.Context, listens []Listen) error {
	if len(listens) == 0 {
		return nil
	}
	return c.submit(ctx, listenTypeImport, listens)
}

func (c *Client) submit(ctx context.Context, listenType string, listens []Listen) error {
	for _, l := range listens {
		if l.TrackMetadata.ArtistName == "" || l.TrackMetadata.TrackName == "" {
			return fmt.Errorf("listenbrainz: artist and track names are required")
		}
		if l.ListenedAt <= 0 {
			return fmt.Errorf("listenbrainz: listened_at is required")
		}
	}

	body := struct {
		ListenType string   `json:"listen_type"`
		Payload    []Listen `json:"payload"`
	}{
		ListenType: listenType,
		Payload:    listens,
	}

	return c.post(ctx, "/1/submit-listens", body, nil)
}
