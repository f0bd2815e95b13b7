package httpclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"regexp"
	"sync"
)

// MockTransport provides a configurable http.RoundTripper for testing.
// It allows stubbing responses per path, per host or per call count and
// records every request it receives.
//
// Example - dev port drift, :4000 down and :4002 up:
//
//	mock := httpclient.NewMockTransport().
//	    StubHost("localhost:4002", http.StatusOK, `{"ok":true}`).
//	    StubError(syscall.ECONNREFUSED)
//
//	client := httpclient.New(
//	    httpclient.WithBaseURL("http://localhost:4000"),
//	    httpclient.WithMockTransport(mock),
//	)
type MockTransport struct {
	mu          sync.Mutex
	stubs       []*stub
	defaultResp *stubResponse
	defaultErr  error
	requests    []*http.Request
	requestHook func(*http.Request)
}

type stub struct {
	matcher  func(*http.Request) bool
	response *stubResponse
	err      error

	// remaining limits how many requests the stub answers. Negative means
	// unlimited.
	remaining int
}

type stubResponse struct {
	statusCode int
	body       []byte
	header     http.Header
}

// NewMockTransport creates a new MockTransport for testing.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// StubResponse stubs all unmatched requests to return the given response.
func (m *MockTransport) StubResponse(statusCode int, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResp = newStubResponse(statusCode, body)
	m.defaultErr = nil
	return m
}

// StubError stubs all unmatched requests to return the given error.
func (m *MockTransport) StubError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultErr = err
	m.defaultResp = nil
	return m
}

// StubErrorTimes makes the next n requests fail with err, before any other
// stub is consulted.
//
// Example - two network failures, then success:
//
//	mock := httpclient.NewMockTransport().
//	    StubErrorTimes(2, errors.New("network")).
//	    StubResponse(http.StatusOK, `{"ok":true}`)
func (m *MockTransport) StubErrorTimes(n int, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, &stub{
		matcher:   func(*http.Request) bool { return true },
		err:       err,
		remaining: n,
	})
	return m
}

// StubPath stubs requests matching the path to return the given response.
func (m *MockTransport) StubPath(path string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.URL.Path == path
	}, statusCode, body)
}

// StubPathRegex stubs requests matching the path regex to return the given response.
func (m *MockTransport) StubPathRegex(pattern string, statusCode int, body string) *MockTransport {
	re := regexp.MustCompile(pattern)
	return m.StubFunc(func(req *http.Request) bool {
		return re.MatchString(req.URL.Path)
	}, statusCode, body)
}

// StubHost stubs requests whose host (host:port) matches.
func (m *MockTransport) StubHost(host string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.URL.Host == host
	}, statusCode, body)
}

// StubHostError stubs requests whose host (host:port) matches to fail.
func (m *MockTransport) StubHostError(host string, err error) *MockTransport {
	return m.StubFuncError(func(req *http.Request) bool {
		return req.URL.Host == host
	}, err)
}

// StubMethod stubs requests with the given method to return the given response.
func (m *MockTransport) StubMethod(method string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.Method == method
	}, statusCode, body)
}

// StubFunc stubs requests matching the predicate to return the given response.
func (m *MockTransport) StubFunc(
	matcher func(*http.Request) bool,
	statusCode int,
	body string,
) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, &stub{
		matcher:   matcher,
		response:  newStubResponse(statusCode, body),
		remaining: -1,
	})
	return m
}

// StubFuncError stubs requests matching the predicate to return the given error.
func (m *MockTransport) StubFuncError(matcher func(*http.Request) bool, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, &stub{
		matcher:   matcher,
		err:       err,
		remaining: -1,
	})
	return m
}

// OnRequest sets a hook that is called for each request.
// Useful for assertions or capturing request details.
func (m *MockTransport) OnRequest(fn func(*http.Request)) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestHook = fn
	return m
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	hook := m.requestHook
	m.mu.Unlock()

	if hook != nil {
		hook(req)
	}

	// Honour cancellation like a real transport.
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check stubs in order (first match wins)
	for _, s := range m.stubs {
		if s.remaining == 0 || !s.matcher(req) {
			continue
		}
		if s.remaining > 0 {
			s.remaining--
		}
		if s.err != nil {
			return nil, s.err
		}
		return s.response.build(req), nil
	}

	if m.defaultErr != nil {
		return nil, m.defaultErr
	}
	if m.defaultResp != nil {
		return m.defaultResp.build(req), nil
	}

	return nil, errors.New("no stub found for request: " + req.Method + " " + req.URL.String())
}

// Requests returns all requests made through this transport.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request{}, m.requests...)
}

// RequestCount returns the number of requests made.
func (m *MockTransport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// RequestedURLs returns the URL of every request, in order.
func (m *MockTransport) RequestedURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	urls := make([]string, 0, len(m.requests))
	for _, r := range m.requests {
		urls = append(urls, r.URL.String())
	}
	return urls
}

// LastRequest returns the most recent request, or nil if none.
func (m *MockTransport) LastRequest() *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Reset clears all recorded requests and stubs.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.stubs = nil
	m.defaultResp = nil
	m.defaultErr = nil
	m.requestHook = nil
}

func newStubResponse(statusCode int, body string) *stubResponse {
	return &stubResponse{
		statusCode: statusCode,
		body:       []byte(body),
		header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// build returns a fresh response so every request can read the body.
func (s *stubResponse) build(req *http.Request) *http.Response {
	return &http.Response{
		Status:        http.StatusText(s.statusCode),
		StatusCode:    s.statusCode,
		Header:        s.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(s.body)),
		ContentLength: int64(len(s.body)),
		Request:       req,
	}
}

// WithMockTransport is a convenience function to create a client with a mock transport.
func WithMockTransport(mock *MockTransport) Option {
	return func(cfg *internalConfig) {
		cfg.MockTransport = mock
	}
}
