package listenbrainz

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Listens fetches the user's listens, most recent first. MinTS/MaxTS in
// params restrict the window natively on the service side.
func (c *Client) Listens(ctx context.Context, user string, p ListensParams) ([]Listen, error) {
	if user == "" {
		return nil, fmt.Errorf("listenbrainz: user is required")
	}

	query := url.Values{}
	if p.Count > 0 {
		query.Set("count", strconv.Itoa(p.Count))
	}
	if p.MinTS > 0 {
		query.Set("min_ts", strconv.FormatInt(p.MinTS, 10))
	}
	if p.MaxTS > 0 {
		query.Set("max_ts", strconv.FormatInt(p.MaxTS, 10))
	}

	var resp struct {
		Payload struct {
			Count   int      `json:"count"`
			Listens []Listen `json:"listens"`
		} `json:"payload"`
	}

	if err := c.get(ctx, "/1/user/"+url.PathEscape(user)+"/listens", query, &resp); err != nil {
		return nil, err
	}

	return resp.Payload.Listens, nil
}
