package httpclient

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultRetryDelay is the base delay between candidate sweeps.
const DefaultRetryDelay = 300 * time.Millisecond

// Ensure the sweep schedule implements the backoff.BackOff interface.
var _ backoff.BackOff = (*backoff.ExponentialBackOff)(nil)

// newSweepBackOff returns the delay schedule between candidate sweeps.
//
// The n-th wait (0-indexed) is exactly base × 2^n: no jitter and no cap,
// so callers get the delays they configured.
//
// Example with base=300ms:
//
//	after sweep 0: 300ms
//	after sweep 1: 600ms
//	after sweep 2: 1.2s
func newSweepBackOff(base time.Duration) *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Duration(math.MaxInt64),
	}
	b.Reset()
	return b
}
