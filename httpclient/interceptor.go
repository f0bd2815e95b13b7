package httpclient

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestInterceptor allows modification of requests before they are sent.
// Interceptors are executed in the order they are added, once per logical
// request. Headers they set are sent on every candidate and every retry.
//
// Common use cases:
//   - Injecting request or correlation IDs
//   - Adding API keys
//   - Adding custom headers based on request context
type RequestInterceptor func(req *http.Request) error

// InterceptorChain manages request interceptors.
type InterceptorChain struct {
	requestInterceptors []RequestInterceptor
}

// NewInterceptorChain creates an empty interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(i RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, i)
}

// ApplyRequestInterceptors runs all request interceptors in order.
// Returns an error if any interceptor fails.
func (c *InterceptorChain) ApplyRequestInterceptors(req *http.Request) error {
	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(req); err != nil {
			return err
		}
	}
	return nil
}

// Common interceptor helpers

// RequestIDHeader is the header set by RequestIDInterceptor.
const RequestIDHeader = "X-Request-ID"

// RequestIDInterceptor sets a random UUID as X-Request-ID unless the caller
// already set one. All attempts of a logical request share the ID, so the
// backend can correlate retries.
func RequestIDInterceptor() RequestInterceptor {
	return func(req *http.Request) error {
		if req.Header.Get(RequestIDHeader) != "" {
			return nil
		}
		id, err := uuid.NewRandom()
		if err != nil {
			return err
		}
		req.Header.Set(RequestIDHeader, id.String())
		return nil
	}
}

// APIKeyInterceptor creates an interceptor that adds an API key header.
func APIKeyInterceptor(headerName, apiKey string) RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set(headerName, apiKey)
		return nil
	}
}

// CorrelationIDInterceptor creates an interceptor that adds a correlation ID.
func CorrelationIDInterceptor(headerName string, idFunc func() string) RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set(headerName, idFunc())
		return nil
	}
}

// UserAgentInterceptor creates an interceptor that sets the User-Agent header.
func UserAgentInterceptor(userAgent string) RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set("User-Agent", userAgent)
		return nil
	}
}
