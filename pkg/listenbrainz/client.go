// Package listenbrainz provides a client for the ListenBrainz API.
//
// The client covers the operations playsync needs: listing a user's
// listens (including native min_ts/max_ts range queries), submitting
// listens, and deleting listens.
//
// Example usage:
//
//	client := listenbrainz.NewClient(listenbrainz.Config{
//	    Token: "user-token",
//	})
//
//	listens, err := client.Listens(ctx, "username", listenbrainz.ListensParams{Count: 50})
package listenbrainz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Config holds client configuration.
type Config struct {
	Token      string       // User token; required for submit and delete
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string       // Optional: API endpoint (defaults to the public API, used for testing)
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// DefaultBaseURL is the public ListenBrainz API endpoint.
const DefaultBaseURL = "https://api.listenbrainz.org"

// Client is the main entry point for ListenBrainz API operations.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     Logger
}

// NewClient creates a new ListenBrainz API client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		token:      cfg.Token,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}
}

// SetToken sets the user token for authenticated requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// get issues an unauthenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", u, nil)
	}, false, out)
}

// post issues an authenticated JSON POST and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	if c.token == "" {
		return ErrNoToken
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, true, out)
}

// do runs one request with retry on network errors, 5xx responses, and
// rate limiting. Context cancellation aborts the retry loop.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error), authed bool, out interface{}) error {
	var lastErr error
	backoff := 1 * time.Second
	maxRetries := 3

	for i := 0; i < maxRetries; i++ {
		req, err := build()
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "playsync/1.0")
		if authed {
			req.Header.Set("Authorization", "Token "+c.token)
		}

		c.logDebugf("listenbrainz: %s %s (attempt %d/%d)", req.Method, req.URL.Path, i+1, maxRetries)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if shouldRetryNetworkError(err) && i < maxRetries-1 {
				c.logDebugf("listenbrainz: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil
		}

		apiErr := parseError(resp.StatusCode, body)
		if apiErr.Temporary() && i < maxRetries-1 {
			c.logDebugf("listenbrainz: temporary error, retrying: %v", apiErr)
			lastErr = apiErr
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}

		return apiErr
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	if urlErr, ok := err.(*url.Error); ok {
		if _, ok := urlErr.Err.(net.Error); ok {
			return true
		}
	}

	return false
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}

// nextBackoff calculates the next backoff duration with exponential increase.
// Maximum backoff is capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}
