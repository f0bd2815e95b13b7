package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/kroma-labs/newsdesk-go/httpclient"
)

// =============================================================================
// Config - Transport and Request Defaults
// =============================================================================

// Config holds the transport settings and the defaults applied to requests
// that leave a field at its zero value.
//
// Example:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Timeout = 5 * time.Second
//	cfg.Retries = 2
//
//	client := httpclient.New(
//	    httpclient.WithConfig(cfg),
//	    httpclient.WithBaseURL("http://localhost:4000"),
//	)
type Config struct {
	// Timeout bounds one logical request: every candidate sweep, every
	// backoff wait and the response body read.
	//
	// Default: 15s
	Timeout time.Duration

	// Retries is the default number of extra candidate sweeps applied by
	// the request builder.
	//
	// Default: 0
	Retries int

	// RetryDelay is the default backoff base between sweeps.
	//
	// Default: 300ms
	RetryDelay time.Duration

	// MaxIdleConns controls the maximum number of idle (keep-alive)
	// connections across all hosts combined.
	//
	// Default: 100
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum idle connections to keep
	// for each host. Dev fallback ports count as separate hosts.
	//
	// Default: 20
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool.
	//
	// Default: 90s
	IdleConnTimeout time.Duration

	// TLSHandshakeTimeout is the maximum time to wait for a TLS handshake.
	//
	// Default: 10s
	TLSHandshakeTimeout time.Duration

	// DialTimeout is the maximum time to wait for a TCP connection. Keep
	// it well under Timeout so a dead candidate does not eat the budget
	// of the ones after it.
	//
	// Default: 2s
	DialTimeout time.Duration

	// KeepAlive specifies the TCP keep-alive probe interval.
	//
	// Default: 30s
	KeepAlive time.Duration

	// DisableKeepAlives forces a new connection for each request.
	//
	// Default: false
	DisableKeepAlives bool
}

// DefaultConfig returns the settings used when WithConfig is not given.
func DefaultConfig() Config {
	return Config{
		Timeout:    15 * time.Second,
		Retries:    0,
		RetryDelay: DefaultRetryDelay,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,

		DialTimeout: 2 * time.Second,
		KeepAlive:   30 * time.Second,
	}
}

// =============================================================================
// Internal Configuration
// =============================================================================

// internalConfig holds all configuration including transport and OTel settings.
type internalConfig struct {
	httpConfig Config

	// === Base URL & Credentials ===

	// BaseURLSource supplies the configured base URL on every request.
	BaseURLSource BaseURLSource

	// State remembers the learned base URL. Shared when set via WithBaseURLState.
	State *BaseURLState

	// TokenSource supplies the bearer token. Nil disables injection.
	TokenSource TokenSource

	// === OpenTelemetry Configuration ===

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *metrics

	// ServiceName is added as "http.client.name" on spans and metrics.
	ServiceName string

	// === Logging ===

	Logger zerolog.Logger
	Debug  bool

	// === Transport Chain ===

	Interceptors  []RequestInterceptor
	RateLimit     *RateLimitConfig
	BreakerConfig *BreakerConfig
	Coalesce      bool

	// MockTransport replaces the network transport in tests.
	MockTransport *MockTransport

	// Transport replaces the network transport. MockTransport wins when both are set.
	Transport http.RoundTripper

	TLSConfig *tls.Config
	ProxyURL  *url.URL
}

// newConfig creates a new internal config with defaults and applies options.
func newConfig(opts ...Option) *internalConfig {
	cfg := &internalConfig{
		httpConfig:     DefaultConfig(),
		BaseURLSource:  StaticBaseURL(""),
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),
		Logger:         defaultLogger,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.State == nil {
		cfg.State = NewBaseURLState()
	}

	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)

	// A nil metrics value disables recording.
	cfg.Metrics, _ = newMetrics(cfg.Meter)

	return cfg
}

// buildTransport creates the base round tripper from the configuration.
func (cfg *internalConfig) buildTransport() http.RoundTripper {
	if cfg.MockTransport != nil {
		return cfg.MockTransport
	}
	if cfg.Transport != nil {
		return cfg.Transport
	}

	hc := cfg.httpConfig

	dialer := &net.Dialer{
		Timeout:   hc.DialTimeout,
		KeepAlive: hc.KeepAlive,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        hc.MaxIdleConns,
		MaxIdleConnsPerHost: hc.MaxIdleConnsPerHost,
		IdleConnTimeout:     hc.IdleConnTimeout,
		TLSHandshakeTimeout: hc.TLSHandshakeTimeout,
		DisableKeepAlives:   hc.DisableKeepAlives,
		TLSClientConfig:     cfg.TLSConfig,
		Proxy:               http.ProxyFromEnvironment,
	}
	if cfg.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(cfg.ProxyURL)
	}

	return transport
}

// requestDefaults returns the defaults applied to zero Request fields.
func (cfg *internalConfig) requestDefaults() requestDefaults {
	return requestDefaults{
		timeout:    cfg.httpConfig.Timeout,
		retries:    cfg.httpConfig.Retries,
		retryDelay: cfg.httpConfig.RetryDelay,
	}
}

// baseAttributes returns common attributes for all spans and metrics.
func (cfg *internalConfig) baseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 1)
	if cfg.ServiceName != "" {
		attrs = append(attrs, attribute.String("http.client.name", cfg.ServiceName))
	}
	return attrs
}

// =============================================================================
// Options - Functional Options for Client Configuration
// =============================================================================

// Option configures the HTTP client.
type Option func(*internalConfig)

// WithConfig sets the transport configuration and request defaults.
// Start from DefaultConfig() and customize as needed.
func WithConfig(c Config) Option {
	return func(cfg *internalConfig) {
		cfg.httpConfig = c
	}
}

// WithBaseURL sets a fixed configured base URL.
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithBaseURL("http://localhost:4000"),
//	)
func WithBaseURL(baseURL string) Option {
	return WithBaseURLSource(StaticBaseURL(baseURL))
}

// WithBaseURLSource sets where the configured base URL is read from.
// The source is consulted on every request; when its value changes the
// learned base URL is dropped.
//
// Example:
//
//	src, _ := config.NewSource(config.WithFile("newsdesk.yaml"))
//	client := httpclient.New(httpclient.WithBaseURLSource(src))
func WithBaseURLSource(src BaseURLSource) Option {
	return func(cfg *internalConfig) {
		cfg.BaseURLSource = src
	}
}

// WithBaseURLState shares a BaseURLState between clients, so a base learned
// by one is used by all.
func WithBaseURLState(state *BaseURLState) Option {
	return func(cfg *internalConfig) {
		cfg.State = state
	}
}

// WithTokenSource sets the bearer token source. The token is read on every
// request and injected as "Authorization: Bearer <token>" unless the caller
// set an Authorization header.
func WithTokenSource(src TokenSource) Option {
	return func(cfg *internalConfig) {
		cfg.TokenSource = src
	}
}

// WithServiceName sets an identifier for this client in traces and metrics.
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithServiceName("newsdesk-web"),
//	)
//
//	// In your traces, you'll see:
//	//   Span: HTTP GET ListArticles
//	//   └── http.client.name: newsdesk-web
func WithServiceName(name string) Option {
	return func(cfg *internalConfig) {
		cfg.ServiceName = name
	}
}

// WithTracerProvider sets a custom OpenTelemetry TracerProvider.
// If not called, the global provider from otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *internalConfig) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets a custom OpenTelemetry MeterProvider.
// If not called, the global provider from otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *internalConfig) {
		cfg.MeterProvider = mp
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *internalConfig) {
		cfg.Logger = logger
	}
}

// WithDebug enables verbose per-attempt logging: every candidate tried,
// every backoff wait, learned bases and terminal failures.
func WithDebug(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.Debug = enabled
	}
}

// WithRequestInterceptor adds an interceptor that runs once per logical
// request, after the default headers are set.
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithRequestInterceptor(httpclient.RequestIDInterceptor()),
//	)
func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(cfg *internalConfig) {
		cfg.Interceptors = append(cfg.Interceptors, i)
	}
}

// WithRateLimit limits the rate of underlying HTTP calls. Every candidate
// and every retry counts as one call.
func WithRateLimit(rl RateLimitConfig) Option {
	return func(cfg *internalConfig) {
		cfg.RateLimit = &rl
	}
}

// WithBreaker enables one circuit breaker per base URL host. An open
// breaker fails the candidate as a network failure, so the sweep moves on
// to the next base.
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithBreaker(httpclient.DefaultBreakerConfig()),
//	)
func WithBreaker(bc BreakerConfig) Option {
	return func(cfg *internalConfig) {
		cfg.BreakerConfig = &bc
	}
}

// WithCoalescing deduplicates identical concurrent GET requests into one
// logical call. Each caller still decodes into its own target.
func WithCoalescing() Option {
	return func(cfg *internalConfig) {
		cfg.Coalesce = true
	}
}

// WithTransport replaces the network transport. Instrumentation, rate
// limiting and circuit breaking still wrap it.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *internalConfig) {
		cfg.Transport = rt
	}
}

// WithTLSConfig sets a custom TLS configuration.
func WithTLSConfig(tlsCfg *tls.Config) Option {
	return func(cfg *internalConfig) {
		cfg.TLSConfig = tlsCfg
	}
}

// WithProxyURL sets a specific proxy URL for all requests. When unset the
// HTTP_PROXY, HTTPS_PROXY and NO_PROXY environment variables apply.
func WithProxyURL(proxyURL *url.URL) Option {
	return func(cfg *internalConfig) {
		cfg.ProxyURL = proxyURL
	}
}
