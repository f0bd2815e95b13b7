package httpclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// GenerateCoalesceKey creates a unique key for request deduplication.
// Key = SHA256(method + URL + sorted query params + extra hash)
func GenerateCoalesceKey(method, rawURL string, extra []byte) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return hashString(method + rawURL + string(extra))
	}

	// Sort query parameters for consistent key generation
	queryParams := parsedURL.Query()
	var sortedParams []string
	for key, values := range queryParams {
		sort.Strings(values)
		for _, v := range values {
			sortedParams = append(sortedParams, key+"="+v)
		}
	}
	sort.Strings(sortedParams)

	normalizedURL := fmt.Sprintf("%s://%s%s", parsedURL.Scheme, parsedURL.Host, parsedURL.Path)

	keyParts := []string{
		method,
		normalizedURL,
		strings.Join(sortedParams, "&"),
	}

	if len(extra) > 0 {
		extraHash := sha256.Sum256(extra)
		keyParts = append(keyParts, hex.EncodeToString(extraHash[:]))
	}

	return hashString(strings.Join(keyParts, "|"))
}

// hashString creates a SHA256 hash of the input string.
func hashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// coalesceKey identifies requests that may share one logical call. Headers,
// the retry policy and the decode target type are part of the key;
// AllowOffline is applied per caller.
func (c *Client) coalesceKey(req Request) string {
	headers := make([]string, 0, len(req.Headers))
	for k, v := range req.Headers {
		headers = append(headers, strings.ToLower(k)+"="+v)
	}
	sort.Strings(headers)

	extra := fmt.Sprintf("%s|%d|%s|%s|%T",
		strings.Join(headers, "&"), req.Retries, req.RetryDelayBase, req.Timeout, req.Result)
	return GenerateCoalesceKey(req.Method, joinURL(c.source.BaseURL(), req.Path), []byte(extra))
}

// sharedTarget returns a fresh value of the target's type for the shared
// call, so a body that does not decode is retried like any other request.
func sharedTarget(target any) any {
	if target == nil {
		return nil
	}
	t := reflect.TypeOf(target)
	if t.Kind() != reflect.Pointer {
		return target
	}
	return reflect.New(t.Elem()).Interface()
}

// doCoalesced runs req through the client's singleflight group.
//
// The shared call decodes into a private value of the caller's target type
// and never returns the offline sentinel. Each caller then gets its own
// copy of the result: the body is decoded again into its target (or into a
// fresh generic value), headers are cloned, and a NetworkError becomes the
// sentinel when the caller allows offline operation. The shared call runs
// under the context of the caller that started it.
func (c *Client) doCoalesced(ctx context.Context, req Request) (*Result, error) {
	shared := req
	shared.Result = sharedTarget(req.Result)
	shared.AllowOffline = false

	v, err, dup := c.group.Do(c.coalesceKey(req), func() (any, error) {
		return c.do(ctx, shared, nil)
	})
	if dup {
		c.debugLog().
			Str("operation", req.Operation).
			Str("path", req.Path).
			Msg("coalesced with in-flight request")
	}
	if err != nil {
		return c.offlineOr(req, err)
	}

	res, err := ownResult(v.(*Result), req.Result)
	if err != nil {
		return c.offlineOr(req, &NetworkError{
			Path:     req.Path,
			URLs:     []string{res.URL},
			Attempts: 1,
			Err:      err,
		})
	}
	return res, nil
}

// ownResult copies a shared result for one caller.
func ownResult(shared *Result, target any) (*Result, error) {
	res := *shared
	res.Header = shared.Header.Clone()
	res.Body = bytes.Clone(shared.Body)
	res.Data = nil
	if res.IsEmpty() {
		return &res, nil
	}

	if target != nil {
		if err := json.Unmarshal(res.Body, target); err != nil {
			return &res, &MalformedResponseError{URL: res.URL, Err: err}
		}
		res.Data = target
		return &res, nil
	}

	var data any
	if err := json.Unmarshal(res.Body, &data); err != nil {
		return &res, &MalformedResponseError{URL: res.URL, Err: err}
	}
	res.Data = data
	return &res, nil
}

func (c *Client) offlineOr(req Request, err error) (*Result, error) {
	var netErr *NetworkError
	if req.AllowOffline && errors.As(err, &netErr) {
		return offlineResult(netErr), nil
	}
	return nil, err
}
