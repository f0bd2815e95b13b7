package httpclient

import (
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// BaseURLSource supplies the configured base URL. It is read at the start of
// every request, so a source backed by reloadable configuration takes effect
// on the next call.
type BaseURLSource interface {
	BaseURL() string
}

// StaticBaseURL is a BaseURLSource that never changes.
type StaticBaseURL string

// BaseURL implements BaseURLSource.
func (s StaticBaseURL) BaseURL() string { return string(s) }

// BaseURLFunc adapts a function to BaseURLSource.
type BaseURLFunc func() string

// BaseURL implements BaseURLSource.
func (f BaseURLFunc) BaseURL() string { return f() }

// TokenSource supplies the bearer token injected into requests. An empty
// token means no Authorization header is added.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client performs JSON requests against a configured base URL with local
// dev port fallback, network-failure retries and OpenTelemetry
// instrumentation.
//
// Create a Client using New():
//
//	client := httpclient.New(
//	    httpclient.WithBaseURL("http://localhost:4000"),
//	    httpclient.WithTokenSource(store),
//	    httpclient.WithServiceName("newsdesk"),
//	)
//
//	var articles []Article
//	_, err := client.Request("ListArticles").
//	    Decode(&articles).
//	    Retries(2).
//	    Get(ctx, "/articles")
type Client struct {
	// httpClient is the underlying HTTP client with transport chain.
	httpClient *http.Client

	// config holds all client configuration.
	config *internalConfig

	source       BaseURLSource
	state        *BaseURLState
	tokens       TokenSource
	interceptors *InterceptorChain
	defaults     requestDefaults

	// group coalesces identical concurrent GETs. Nil when disabled.
	group *singleflight.Group

	logger zerolog.Logger
	debug  bool
}

// New creates a Client.
//
// The transport chain, outermost first, is:
//
//	otelTransport -> circuitBreakerTransport -> rateLimitTransport -> base
//
// The breaker and rate limiter are only present when configured. The
// http.Client carries no timeout of its own; each logical request gets one
// context deadline covering all of its attempts.
func New(opts ...Option) *Client {
	cfg := newConfig(opts...)

	transport := cfg.buildTransport()
	if cfg.RateLimit != nil {
		transport = newRateLimitTransport(transport, *cfg.RateLimit)
	}
	transport = newCircuitBreakerTransport(transport, cfg)
	instrumented := newOtelTransport(transport, cfg)

	interceptors := NewInterceptorChain()
	for _, i := range cfg.Interceptors {
		interceptors.AddRequestInterceptor(i)
	}

	c := &Client{
		httpClient:   &http.Client{Transport: instrumented},
		config:       cfg,
		source:       cfg.BaseURLSource,
		state:        cfg.State,
		tokens:       cfg.TokenSource,
		interceptors: interceptors,
		defaults:     cfg.requestDefaults(),
		logger:       cfg.Logger,
		debug:        cfg.Debug,
	}
	if cfg.Coalesce {
		c.group = &singleflight.Group{}
	}
	return c
}

// HTTP returns the underlying *http.Client for advanced use cases.
//
// Requests sent through it go through instrumentation, rate limiting and
// circuit breaking, but not through base URL fallback or retries.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

// State returns the client's learned base URL state.
func (c *Client) State() *BaseURLState {
	return c.state
}

// Request creates a new RequestBuilder for the given operation name.
//
// The operation name is used for:
//   - OpenTelemetry span naming (e.g., "HTTP GET ListArticles")
//   - Debug logging identification
//
// The builder starts with the client's default retry count.
func (c *Client) Request(operationName string) *RequestBuilder {
	return &RequestBuilder{
		client: c,
		req: Request{
			Operation: operationName,
			Retries:   c.defaults.retries,
		},
		pathParams: make(map[string]string),
	}
}
