package httpclient

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

// maxErrorBodyBytes caps how much of a non-2xx body is kept as the
// HTTPError message.
const maxErrorBodyBytes = 64 * 1024

// outcomeKind tags the result of one underlying HTTP call.
type outcomeKind int

const (
	// outcomeSuccess is a 2xx response whose body decoded (or was empty).
	outcomeSuccess outcomeKind = iota

	// outcomeNoContent is a 204 response. Its body is never parsed.
	outcomeNoContent

	// outcomeHTTPError is any status outside 2xx. Terminal.
	outcomeHTTPError

	// outcomeNetwork is a failure with no usable response. Retryable.
	outcomeNetwork
)

// String returns the outcome name used in logs and span events.
func (k outcomeKind) String() string {
	switch k {
	case outcomeSuccess:
		return "success"
	case outcomeNoContent:
		return "no_content"
	case outcomeHTTPError:
		return "http_error"
	case outcomeNetwork:
		return "network_error"
	default:
		return "unknown"
	}
}

// outcome is the tagged result of one underlying call. Exactly one of
// result, httpErr or err is set, according to kind.
type outcome struct {
	kind    outcomeKind
	result  *Result
	httpErr *HTTPError
	err     error
}

// classify turns a transport response/error pair into an outcome.
//
// Classification happens here and only here, so the candidate sweep never
// has to inspect error values structurally:
//   - transport error: network
//   - status 204: no content
//   - status outside 2xx: HTTP error (body read best-effort)
//   - 2xx whose body fails to decode: network (malformed response)
//   - other 2xx: success
//
// The response body is always drained and closed.
func classify(resp *http.Response, err error, target any) outcome {
	if err != nil {
		return outcome{kind: outcomeNetwork, err: err}
	}
	defer resp.Body.Close()

	resolved := ""
	if resp.Request != nil && resp.Request.URL != nil {
		resolved = resp.Request.URL.String()
	}

	if resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return outcome{kind: outcomeNoContent, result: &Result{
			StatusCode: resp.StatusCode,
			URL:        resolved,
			NoContent:  true,
		}}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read failures leave the message empty; the status text fills in.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return outcome{
			kind:    outcomeHTTPError,
			httpErr: newHTTPError(resolved, resp.StatusCode, string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome{kind: outcomeNetwork, err: err}
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		URL:        resolved,
		Header:     resp.Header,
		Body:       body,
	}
	if len(body) == 0 {
		return outcome{kind: outcomeSuccess, result: result}
	}

	if target != nil {
		if err := json.Unmarshal(body, target); err != nil {
			return outcome{kind: outcomeNetwork, err: &MalformedResponseError{URL: resolved, Err: err}}
		}
		result.Data = target
		return outcome{kind: outcomeSuccess, result: result}
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return outcome{kind: outcomeNetwork, err: &MalformedResponseError{URL: resolved, Err: err}}
	}
	result.Data = data
	return outcome{kind: outcomeSuccess, result: result}
}

// MalformedResponseError is the transient failure recorded when a 2xx body
// is not valid JSON for the decode target.
type MalformedResponseError struct {
	URL string
	Err error
}

// Error implements error.
func (e *MalformedResponseError) Error() string {
	return "malformed response from " + e.URL + ": " + e.Err.Error()
}

// Unwrap returns the decode error.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// isMalformedResponse reports whether err came from a body that failed to decode.
func isMalformedResponse(err error) bool {
	var malformed *MalformedResponseError
	return errors.As(err, &malformed)
}
