package httpclient

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// Result is the outcome of a successful logical request, or the offline
// sentinel when the request set AllowOffline and every attempt failed at
// the network level.
//
// Example:
//
//	var articles []Article
//	res, err := client.Request("ListArticles").
//	    Decode(&articles).
//	    AllowOffline().
//	    Get(ctx, "/articles")
//	if err != nil {
//	    return err // HTTPError or validation error
//	}
//	if res.NetworkError {
//	    log.Warn().Msg(res.Message) // serve cached data instead
//	}
type Result struct {
	// StatusCode is the response status. Zero for the offline sentinel.
	StatusCode int

	// URL is the resolved URL of the response.
	URL string

	// BaseURL is the candidate base that produced the response.
	BaseURL string

	// Header holds the response headers. Nil for 204 and the offline sentinel.
	Header http.Header

	// Body is the raw response body. Empty for 204.
	Body []byte

	// Data is the decoded body: the Decode target when one was set,
	// otherwise a generic JSON value (map[string]any, []any, ...).
	Data any

	// NoContent is true for 204 responses.
	NoContent bool

	// NetworkError marks the offline sentinel.
	NetworkError bool

	// Message describes the network failure for the offline sentinel.
	Message string
}

// IsSuccess returns true if the result carries a 2xx response.
func (r *Result) IsSuccess() bool {
	return r != nil && !r.NetworkError && r.StatusCode >= 200 && r.StatusCode < 300
}

// IsEmpty returns true when there is no body to decode: 204 responses,
// empty 2xx bodies and the offline sentinel.
func (r *Result) IsEmpty() bool {
	return r == nil || r.NoContent || r.NetworkError || len(r.Body) == 0
}

// Decode unmarshals the raw body into v. It is a no-op for empty results.
func (r *Result) Decode(v any) error {
	if r.IsEmpty() {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// String returns the raw body as a string.
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// offlineResult builds the sentinel returned instead of a NetworkError
// when the request allows offline operation.
func offlineResult(err *NetworkError) *Result {
	return &Result{
		NetworkError: true,
		Message:      err.Error(),
	}
}
