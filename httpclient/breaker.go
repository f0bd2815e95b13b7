package httpclient

import (
	"errors"
	"net"
	"net/http"
	"syscall"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// CircuitBreaker is the interface used by circuit breaker transport.
// It matches gobreaker.CircuitBreaker signature.
//
//go:generate mockery --name CircuitBreaker --output ./mocks --outpkg mocks --with-expecter
type CircuitBreaker interface {
	Execute(req func() (*http.Response, error)) (*http.Response, error)
}

// BreakerClassifier determines if a request failure should contribute to the circuit breaker trip count.
// Returns true if the error/response indicates a system failure (e.g., 500, Network Error).
type BreakerClassifier func(resp *http.Response, err error) bool

// BreakerConfig holds the configuration for the circuit breakers.
//
// The client keeps one breaker per base URL host (host:port), so a dead
// dev port trips its own breaker and later sweeps skip it without
// touching the network, while the port that answers stays closed.
//
// Concepts:
//   - Closed: Normal state, requests allowed.
//   - Open: Failing state, requests rejected immediately.
//   - Half-Open: Probing state, limited requests allowed to test recovery.
type BreakerConfig struct {
	// MaxRequests is the maximum number of requests allowed to pass through
	// when the circuit breaker is half-open (probing).
	// If 0, the circuit breaker allows 1 request.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state
	// for the CircuitBreaker to clear the internal Counts.
	// If 0, the CircuitBreaker doesn't clear internal Counts during the closed state.
	Interval time.Duration

	// Timeout is the period of the open state,
	// after which the state of the CircuitBreaker becomes half-open.
	// gobreaker defaults this to 60s if 0.
	Timeout time.Duration

	// FailureThreshold is the minimum number of requests needed before a circuit can be tripped due to failure ratio.
	FailureThreshold uint32

	// FailureRatio is the threshold of failure ratio (0.0 - 1.0) to trip the circuit.
	FailureRatio float64

	// ConsecutiveFailures is the number of consecutive failures that will trip the circuit.
	// If 0, this rule is disabled.
	ConsecutiveFailures uint32

	// Classifier determines which errors count as failures.
	// Default: DefaultBreakerClassifier
	Classifier BreakerClassifier

	// OnStateChange is a callback invoked when a breaker changes state.
	// name is the host the breaker guards.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns a default configuration for local circuit breakers.
//
//   - Interval: 10s
//   - Timeout: 10s (Fail fast, recover fast)
//   - FailureThreshold: 20 (Minimum requests before ratio applies)
//   - FailureRatio: 0.5 (50% failure rate)
//   - ConsecutiveFailures: 5 (Trip immediately after 5 sequential failures)
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            10 * time.Second,
		Timeout:             10 * time.Second,
		FailureThreshold:    20,
		FailureRatio:        0.5,
		ConsecutiveFailures: 5,
		Classifier:          DefaultBreakerClassifier,
	}
}

// readyToTrip reports whether counts should open the breaker.
//
// ConsecutiveFailures is checked before FailureThreshold so a small number
// of sequential failures can trip a breaker that has seen few requests.
func (bc BreakerConfig) readyToTrip(counts gobreaker.Counts) bool {
	if bc.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= bc.ConsecutiveFailures {
		return true
	}
	if bc.FailureThreshold > 0 && counts.Requests < bc.FailureThreshold {
		return false
	}
	if bc.FailureRatio > 0 && counts.Requests > 0 {
		ratio := float64(counts.TotalFailures) / float64(counts.Requests)
		if ratio >= bc.FailureRatio {
			return true
		}
	}
	return false
}

// DefaultBreakerClassifier classifies 5xx errors and network errors as failures.
// It ignores 429s and other 4xx: they say nothing about the host's health.
func DefaultBreakerClassifier(resp *http.Response, err error) bool {
	if err != nil {
		return isNetworkError(err)
	}
	return resp != nil && resp.StatusCode >= 500
}

// isNetworkError checks for common network errors.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
