package httpclient

import "sync"

// BaseURLState remembers which base URL last worked for a client.
//
// A base URL other than the configured one becomes the "learned" base the
// first time a request succeeds against it. Every later request starts
// with the learned base until the configured base changes, at which point
// the learned base is dropped.
//
// The zero value is ready to use. A single BaseURLState may be shared by
// several clients via WithBaseURLState; it is safe for concurrent use.
type BaseURLState struct {
	mu                 sync.Mutex
	dynamicBaseURL     string
	lastConfiguredBase string
}

// NewBaseURLState returns an empty state.
func NewBaseURLState() *BaseURLState {
	return &BaseURLState{}
}

// resolve records the currently configured base and returns the base the
// next candidate sweep should start with.
func (s *BaseURLState) resolve(configured string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if configured != s.lastConfiguredBase {
		s.dynamicBaseURL = ""
		s.lastConfiguredBase = configured
	}

	if s.dynamicBaseURL != "" {
		return s.dynamicBaseURL
	}
	return configured
}

// learn stores base as the learned base, unless the configured base has
// changed since the call that discovered it started.
func (s *BaseURLState) learn(configured, base string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if configured != s.lastConfiguredBase {
		return false
	}
	s.dynamicBaseURL = base
	return true
}

// Learned returns the learned base URL, or "" when none is set.
func (s *BaseURLState) Learned() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamicBaseURL
}

// Reset forgets the learned base URL and the last configured base.
func (s *BaseURLState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dynamicBaseURL = ""
	s.lastConfiguredBase = ""
}
