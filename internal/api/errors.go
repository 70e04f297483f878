package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrDecode is returned when a successful response body cannot be decoded
var ErrDecode = errors.New("api: malformed response")

// Error is a non-2xx answer from the backend. Message holds the server's
// {"error": "..."} text and is empty when the body carried none.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Message returns the server supplied message carried by err, or fallback
// when err is not an *Error or the server sent no message.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
