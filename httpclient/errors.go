package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNetwork is matched by every error that represents a logical request
// which never obtained an HTTP response (DNS, refused connection, timeout,
// malformed response) after the retry policy was exhausted.
//
//	if errors.Is(err, httpclient.ErrNetwork) {
//	    // serve cached data
//	}
var ErrNetwork = errors.New("network request failed")

// HTTPError is returned when the server answered with a status outside
// the 2xx range. It is terminal: the client never retries it and never
// tries another base URL after receiving it.
type HTTPError struct {
	// URL is the resolved URL of the response (after redirects).
	URL string

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the response body text, or the standard reason phrase
	// when the body was empty or unreadable.
	Message string
}

// Error implements error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.URL, e.Message)
}

// newHTTPError builds an HTTPError, falling back to the status text
// when the body is empty.
func newHTTPError(url string, statusCode int, body string) *HTTPError {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &HTTPError{URL: url, StatusCode: statusCode, Message: msg}
}

// IsHTTPError reports whether err is (or wraps) an *HTTPError and returns it.
func IsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// NetworkError describes a logical request whose every candidate base URL
// failed at the transport level on every attempt.
//
// It matches ErrNetwork and the last underlying cause with errors.Is:
//
//	errors.Is(err, httpclient.ErrNetwork)       // true
//	errors.Is(err, context.DeadlineExceeded)   // true when the call timed out
type NetworkError struct {
	// Path is the request path that was attempted.
	Path string

	// URLs lists every absolute URL tried, in candidate order.
	URLs []string

	// Attempts is the number of candidate sweeps performed.
	Attempts int

	// Err is the last underlying transport error.
	Err error
}

// Error implements error.
func (e *NetworkError) Error() string {
	cause := "unknown error"
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return fmt.Sprintf(
		"network request to %s failed after %d attempt(s); tried %s: %s",
		e.Path,
		e.Attempts,
		strings.Join(e.URLs, ", "),
		cause,
	)
}

// Unwrap exposes both ErrNetwork and the last underlying cause.
func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNetwork}
	}
	return []error{ErrNetwork, e.Err}
}

// ValidationError is returned before any I/O when a Request is malformed.
type ValidationError struct {
	Err error
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "invalid request: " + e.Err.Error()
}

// Unwrap returns the underlying validator error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
