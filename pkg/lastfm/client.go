// Package lastfm provides a client for the audioscrobbler 2.0 API as
// served by Last.fm and compatible services (GNU FM / Libre.fm).
//
// The client covers the operations playsync needs: listing a user's
// recently played tracks (including time-range queries), submitting
// scrobbles, and removing scrobbles from the user's library.
//
// Example usage:
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey:     "your-api-key",
//	    APISecret:  "your-api-secret",
//	    SessionKey: "saved-session-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tracks, err := client.User().RecentTracks(ctx, "username", lastfm.RecentTracksParams{Limit: 50})
package lastfm

import (
	"fmt"
	"net/http"
)

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: API key
	APISecret  string       // Required: API secret
	SessionKey string       // Optional: Session key for authenticated requests
	HTTPClient *http.Client // Optional: HTTP client (defaults to http.DefaultClient)
	BaseURL    string       // Optional: API endpoint (defaults to Last.fm, override for Libre.fm or testing)
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for audioscrobbler API operations.
type Client struct {
	apiKey     string
	apiSecret  string
	sessionKey string
	httpClient *http.Client
	baseURL    string
	logger     Logger

	user     *UserService
	scrobble *ScrobbleService
	library  *LibraryService
}

const (
	// DefaultBaseURL is the default Last.fm API endpoint.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// LibreFMBaseURL is the Libre.fm endpoint, wire-compatible with
	// the Last.fm API.
	LibreFMBaseURL = "https://libre.fm/2.0/"
)

// NewClient creates a new audioscrobbler API client.
//
// Returns an error if required configuration (APIKey, APISecret) is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lastfm: APIKey is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("lastfm: APISecret is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		sessionKey: cfg.SessionKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}

	c.user = &UserService{client: c}
	c.scrobble = &ScrobbleService{client: c}
	c.library = &LibraryService{client: c}

	return c, nil
}

// User returns the user service (read operations).
func (c *Client) User() *UserService {
	return c.user
}

// Scrobble returns the scrobbling service.
func (c *Client) Scrobble() *ScrobbleService {
	return c.scrobble
}

// Library returns the library service (scrobble removal).
func (c *Client) Library() *LibraryService {
	return c.library
}

// SetSessionKey sets the session key for authenticated requests.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
}

// GetSessionKey returns the current session key.
func (c *Client) GetSessionKey() string {
	return c.sessionKey
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
