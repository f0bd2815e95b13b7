package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// validate is shared by all requests. It caches struct metadata and is
// safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Request describes one logical JSON call.
//
// Path is always combined with a base URL; it is never sent standalone.
// Zero values take the client defaults: GET, the client timeout and the
// client retry delay.
//
// Example:
//
//	res, err := client.Do(ctx, httpclient.Request{
//	    Operation: "ListArticles",
//	    Path:      "/articles",
//	    Retries:   2,
//	})
type Request struct {
	// Operation names the call in spans and logs. Optional.
	Operation string

	// Method is the HTTP verb. Default: GET.
	Method string `validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`

	// Path is appended to the base URL and must start with "/".
	Path string `validate:"required,startswith=/"`

	// Body is serialized as JSON when non-nil.
	Body any

	// Headers are merged over the defaults; caller values win.
	Headers map[string]string

	// Timeout bounds the whole logical call, retries and backoff included.
	// Zero takes the client timeout; a negative value disables the timeout.
	Timeout time.Duration `validate:"gte=0s"`

	// Retries is the number of extra candidate sweeps after the first one.
	Retries int `validate:"gte=0"`

	// RetryDelayBase is the wait after the first failed sweep. Each later
	// wait doubles. Zero takes the client retry delay; a negative value
	// retries without waiting.
	RetryDelayBase time.Duration `validate:"gte=0s"`

	// AllowOffline returns the offline sentinel Result instead of a
	// NetworkError when every attempt fails at the network level.
	AllowOffline bool

	// Result is the decode target for 2xx bodies. When nil the body is
	// decoded into a generic JSON value.
	Result any
}

// withDefaults fills zero fields from the client defaults. Negative
// durations mean "none" and become zero.
func (r Request) withDefaults(d requestDefaults) Request {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	r.Method = strings.ToUpper(r.Method)
	r.Timeout = durationOrDefault(r.Timeout, d.timeout)
	r.RetryDelayBase = durationOrDefault(r.RetryDelayBase, d.retryDelay)
	return r
}

func durationOrDefault(v, def time.Duration) time.Duration {
	switch {
	case v == 0:
		return def
	case v < 0:
		return 0
	default:
		return v
	}
}

// validate checks the request before any I/O happens.
func (r Request) validate() error {
	if err := validate.Struct(r); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// encodeBody serializes the body once so every attempt sends the same bytes.
// A []byte body is sent as-is.
func (r Request) encodeBody() ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	if raw, ok := r.Body.([]byte); ok {
		return raw, nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	return data, nil
}

// requestDefaults are the client-level values applied to zero Request fields.
type requestDefaults struct {
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
}

// RequestBuilder provides a fluent API for constructing a Request.
//
// Create a RequestBuilder using Client.Request():
//
//	var article Article
//	_, err := client.Request("GetArticle").
//	    Path("/articles/{id}").
//	    PathParam("id", id).
//	    Decode(&article).
//	    Get(ctx)
type RequestBuilder struct {
	client      *Client
	req         Request
	pathParams  map[string]string
	queryParams url.Values
}

// Path sets the request path.
//
// Path parameters can be specified using {name} syntax and filled with
// PathParam().
func (rb *RequestBuilder) Path(path string) *RequestBuilder {
	rb.req.Path = path
	return rb
}

// PathParam sets a path parameter value. The value is path-escaped.
func (rb *RequestBuilder) PathParam(key, value string) *RequestBuilder {
	rb.pathParams[key] = value
	return rb
}

// Query adds a single query parameter.
//
// Example:
//
//	client.Request("ListArticles").
//	    Query("category", "tech").
//	    Get(ctx, "/articles")
func (rb *RequestBuilder) Query(key, value string) *RequestBuilder {
	if rb.queryParams == nil {
		rb.queryParams = make(url.Values)
	}
	rb.queryParams.Set(key, value)
	return rb
}

// Header sets a single request header.
func (rb *RequestBuilder) Header(key, value string) *RequestBuilder {
	if rb.req.Headers == nil {
		rb.req.Headers = make(map[string]string)
	}
	rb.req.Headers[key] = value
	return rb
}

// Headers sets multiple request headers.
func (rb *RequestBuilder) Headers(headers map[string]string) *RequestBuilder {
	for k, v := range headers {
		rb.Header(k, v)
	}
	return rb
}

// Body sets the JSON request body.
func (rb *RequestBuilder) Body(v any) *RequestBuilder {
	rb.req.Body = v
	return rb
}

// Decode sets the target for 2xx response decoding.
//
// Example:
//
//	var articles []Article
//	_, err := client.Request("ListArticles").
//	    Decode(&articles).
//	    Get(ctx, "/articles")
func (rb *RequestBuilder) Decode(v any) *RequestBuilder {
	rb.req.Result = v
	return rb
}

// Retries sets the number of extra candidate sweeps on network failure.
func (rb *RequestBuilder) Retries(n int) *RequestBuilder {
	rb.req.Retries = n
	return rb
}

// RetryDelay sets the base backoff delay. Pass a negative delay to retry
// without waiting.
func (rb *RequestBuilder) RetryDelay(d time.Duration) *RequestBuilder {
	rb.req.RetryDelayBase = d
	return rb
}

// Timeout sets the timeout for the whole logical call. Pass a negative
// duration to disable the client timeout.
func (rb *RequestBuilder) Timeout(d time.Duration) *RequestBuilder {
	rb.req.Timeout = d
	return rb
}

// AllowOffline makes network failures return the offline sentinel
// instead of an error.
//
// Example:
//
//	res, err := client.Request("ListArticles").
//	    AllowOffline().
//	    Get(ctx, "/articles")
//	if err == nil && res.NetworkError {
//	    // serve cached articles
//	}
func (rb *RequestBuilder) AllowOffline() *RequestBuilder {
	rb.req.AllowOffline = true
	return rb
}

// Build returns the Request the builder describes.
func (rb *RequestBuilder) Build() Request {
	req := rb.req
	req.Path = rb.buildPath()
	return req
}

// Get executes a GET request.
//
// Example:
//
//	res, err := client.Request("GetProfile").Get(ctx, "/users/me")
func (rb *RequestBuilder) Get(ctx context.Context, path ...string) (*Result, error) {
	return rb.execute(ctx, http.MethodGet, path)
}

// Post executes a POST request.
func (rb *RequestBuilder) Post(ctx context.Context, path ...string) (*Result, error) {
	return rb.execute(ctx, http.MethodPost, path)
}

// Put executes a PUT request.
func (rb *RequestBuilder) Put(ctx context.Context, path ...string) (*Result, error) {
	return rb.execute(ctx, http.MethodPut, path)
}

// Patch executes a PATCH request.
func (rb *RequestBuilder) Patch(ctx context.Context, path ...string) (*Result, error) {
	return rb.execute(ctx, http.MethodPatch, path)
}

// Delete executes a DELETE request.
func (rb *RequestBuilder) Delete(ctx context.Context, path ...string) (*Result, error) {
	return rb.execute(ctx, http.MethodDelete, path)
}

func (rb *RequestBuilder) execute(ctx context.Context, method string, path []string) (*Result, error) {
	if len(path) > 0 {
		rb.req.Path = path[0]
	}
	rb.req.Method = method
	return rb.client.Do(ctx, rb.Build())
}

// buildPath applies path parameters and query parameters to the path.
func (rb *RequestBuilder) buildPath() string {
	path := rb.req.Path
	for k, v := range rb.pathParams {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	if len(rb.queryParams) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + rb.queryParams.Encode()
}
