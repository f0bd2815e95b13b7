// Package credentials holds the bearer token the newsdesk client sends
// with every request.
package credentials

import (
	"strings"
	"sync"

	"github.com/kroma-labs/newsdesk-go/httpclient"
)

var _ httpclient.TokenSource = (*Store)(nil)

// Store is an in-memory token store. The zero value holds no token.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	token string
}

// NewStore returns a Store holding token.
func NewStore(token string) *Store {
	s := &Store{}
	s.Set(token)
	return s
}

// Set replaces the stored token. Surrounding whitespace is dropped, so a
// token read from a file or terminal can be passed as is.
func (s *Store) Set(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}

// Clear forgets the stored token. Later requests carry no Authorization
// header.
func (s *Store) Clear() {
	s.Set("")
}

// Token returns the stored token, or "" when none is set.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
