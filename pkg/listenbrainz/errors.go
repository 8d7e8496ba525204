package listenbrainz

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error represents a ListenBrainz API error response.
type Error struct {
	StatusCode int    // HTTP status code
	Message    string // Error message from the service
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("listenbrainz: error %d: %s", e.StatusCode, e.Message)
}

// Is checks if the target error is an API error with the same status code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode
}

// Temporary returns true if the request should be retried: rate
// limiting (429) and server-side failures (5xx).
func (e *Error) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ErrNoToken is returned when an operation requires authentication but
// no user token has been set.
var ErrNoToken = fmt.Errorf("listenbrainz: user token required")

// parseError builds an *Error from a non-200 response body.
func parseError(statusCode int, body []byte) *Error {
	var payload struct {
		Code  int    `json:"code"`
		Error string `json:"error"`
	}

	msg := http.StatusText(statusCode)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	return &Error{
		StatusCode: statusCode,
		Message:    msg,
	}
}
