package httpclient

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/sony/gobreaker/v2"
)

// circuitBreakerTransport is a RoundTripper that wraps requests in a
// circuit breaker per target host.
type circuitBreakerTransport struct {
	next       http.RoundTripper
	classifier BreakerClassifier
	cfg        *internalConfig

	mu       sync.Mutex
	breakers map[string]CircuitBreaker
}

// errSyntheticFailure is a sentinel error used to signal the circuit breaker
// that a request failed (e.g. 500 status) even if the underlying RoundTrip returned no error.
// It is intercepted and unwrapped by the transport before returning to the caller.
var errSyntheticFailure = errors.New("synthetic failure")

// newCircuitBreakerTransport creates a new circuit breaker transport.
// It returns next unchanged when no breaker is configured.
func newCircuitBreakerTransport(next http.RoundTripper, cfg *internalConfig) http.RoundTripper {
	if cfg.BreakerConfig == nil {
		return next
	}

	classifier := cfg.BreakerConfig.Classifier
	if classifier == nil {
		classifier = DefaultBreakerClassifier
	}

	return &circuitBreakerTransport{
		next:       next,
		classifier: classifier,
		cfg:        cfg,
		breakers:   make(map[string]CircuitBreaker),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *circuitBreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	name := req.URL.Host

	resp, err := t.breaker(name).Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req) //nolint:bodyclose

		if t.classifier(resp, err) {
			if err != nil {
				return resp, err
			}
			return resp, errSyntheticFailure
		}

		return resp, err
	})
	if err != nil {
		// Differentiate between "Circuit Open" rejection and "Actual Failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			t.cfg.Metrics.recordBreakerRequest(ctx, name, "rejected")
			return nil, err
		}

		t.cfg.Metrics.recordBreakerRequest(ctx, name, "failure")

		// The response is still handed back so its status reaches the caller.
		if errors.Is(err, errSyntheticFailure) && resp != nil {
			return resp, nil
		}

		return nil, err
	}

	t.cfg.Metrics.recordBreakerRequest(ctx, name, "success")

	return resp, nil
}

// breaker returns the breaker guarding host, creating it on first use.
func (t *circuitBreakerTransport) breaker(host string) CircuitBreaker {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cb, ok := t.breakers[host]; ok {
		return cb
	}

	bc := *t.cfg.BreakerConfig
	st := gobreaker.Settings{
		Name:        host,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: bc.readyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			t.cfg.Metrics.recordBreakerState(context.Background(), name, int64(to))
			if bc.OnStateChange != nil {
				bc.OnStateChange(name, from, to)
			}
		},
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](st)
	t.breakers[host] = cb
	return cb
}
