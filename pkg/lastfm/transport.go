package lastfm

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Base represents the root XML response from the API.
type Base struct {
	XMLName xml.Name `xml:"lfm"`
	Status  string   `xml:"status,attr"`
	Inner   []byte   `xml:",innerxml"`
}

// APIError represents an error response from the API.
type APIError struct {
	Code    int    `xml:"code,attr"`
	Message string `xml:",chardata"`
}

const (
	apiStatusOK     = "ok"
	apiStatusFailed = "failed"
)

// call makes an HTTP request to the audioscrobbler API with retry logic.
//
// Read methods go out as unsigned GET requests; write methods (signed=true)
// are POSTed with the session key and an MD5 request signature. Temporary
// API errors, 5xx responses, and network errors are retried with
// exponential backoff. Context cancellation aborts the retry loop.
func (c *Client) call(ctx context.Context, method string, params map[string]string, signed bool) ([]byte, error) {
	reqParams := make(map[string]string)
	for k, v := range params {
		reqParams[k] = v
	}
	reqParams["method"] = method
	reqParams["api_key"] = c.apiKey

	if signed {
		if c.sessionKey == "" {
			return nil, ErrNoSessionKey
		}
		reqParams["sk"] = c.sessionKey
	}

	values := url.Values{}
	for k, v := range reqParams {
		values.Add(k, v)
	}
	if signed {
		values.Add("api_sig", signRequest(reqParams, c.apiSecret))
	}

	var lastErr error
	backoff := 1 * time.Second
	maxRetries := 3

	for i := 0; i < maxRetries; i++ {
		c.logDebugf("lastfm: calling %s (attempt %d/%d)", method, i+1, maxRetries)

		req, err := c.newRequest(ctx, values, signed)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if shouldRetryNetworkError(err) && i < maxRetries-1 {
				c.logDebugf("lastfm: network error, retrying: %v", err)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, resp.Status)
			if i < maxRetries-1 {
				c.logDebugf("lastfm: server error, retrying: %v", lastErr)
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, lastErr
		}

		// The API reports its own errors with a 200 or 4xx status and an
		// <lfm status="failed"> body, so parse before rejecting 4xx.
		var base Base
		if err := xml.Unmarshal(body, &base); err != nil {
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			}
			return nil, fmt.Errorf("failed to parse XML response: %w", err)
		}

		if base.Status == apiStatusFailed {
			var apiErr APIError
			if err := xml.Unmarshal(base.Inner, &apiErr); err != nil {
				return nil, fmt.Errorf("failed to parse error response: %w", err)
			}

			lfmErr := &Error{
				Code:    apiErr.Code,
				Message: apiErr.Message,
			}

			if lfmErr.Temporary() && i < maxRetries-1 {
				c.logDebugf("lastfm: temporary error, retrying: %v", lfmErr)
				lastErr = lfmErr
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}

			return nil, lfmErr
		}

		c.logDebugf("lastfm: %s succeeded", method)
		return base.Inner, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// newRequest builds a GET request for reads and a form POST for signed writes.
func (c *Client) newRequest(ctx context.Context, values url.Values, signed bool) (*http.Request, error) {
	var req *http.Request
	var err error

	if signed {
		req, err = http.NewRequestWithContext(ctx, "POST", c.baseURL, strings.NewReader(values.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req, err = http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+values.Encode(), nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("User-Agent", "playsync/1.0")
	return req, nil
}

// signRequest generates the MD5 request signature required for write
// methods: parameters sorted by key, concatenated as key+value pairs,
// with the API secret appended.
func signRequest(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sigPlain strings.Builder
	for _, k := range keys {
		sigPlain.WriteString(k)
		sigPlain.WriteString(params[k])
	}
	sigPlain.WriteString(secret)

	sum := md5.Sum([]byte(sigPlain.String()))
	return hex.EncodeToString(sum[:])
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
