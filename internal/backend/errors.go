package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is returned for any 401, uniformly across endpoints.
	// The caller abandons the in-flight operation and redirects to login.
	ErrSessionExpired = errors.New("session expired")

	// ErrMalformedResponse is returned when a response body does not match
	// any accepted shape. Shape handling lives here at the boundary, never
	// inside business logic.
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is a server-detected business-rule failure (4xx with message).
// The message is surfaced verbatim to the user.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}
