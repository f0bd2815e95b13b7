package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doMock(t *testing.T, m *MockTransport, method, rawURL string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(method, rawURL, nil)
	require.NoError(t, err)
	return m.RoundTrip(req)
}

func TestMockTransport_Stubs(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(m *MockTransport)
		method     string
		url        string
		wantStatus int
		wantBody   string
		wantErr    bool
	}{
		{
			name:       "given default response, then returns it",
			setup:      func(m *MockTransport) { m.StubResponse(200, `{"ok":true}`) },
			method:     http.MethodGet,
			url:        "http://api.test/a",
			wantStatus: 200,
			wantBody:   `{"ok":true}`,
		},
		{
			name: "given path stub, then wins over default",
			setup: func(m *MockTransport) {
				m.StubPath("/a", 201, `a`).StubResponse(200, `d`)
			},
			method:     http.MethodGet,
			url:        "http://api.test/a",
			wantStatus: 201,
			wantBody:   "a",
		},
		{
			name:       "given path regex, then matches",
			setup:      func(m *MockTransport) { m.StubPathRegex(`^/articles/\w+$`, 200, `r`) },
			method:     http.MethodGet,
			url:        "http://api.test/articles/a1",
			wantStatus: 200,
			wantBody:   "r",
		},
		{
			name:       "given host stub, then matches host and port",
			setup:      func(m *MockTransport) { m.StubHost("localhost:4003", 200, `h`).StubError(errRefused) },
			method:     http.MethodGet,
			url:        "http://localhost:4003/x",
			wantStatus: 200,
			wantBody:   "h",
		},
		{
			name:    "given host error stub, then fails",
			setup:   func(m *MockTransport) { m.StubHostError("localhost:4000", errRefused).StubResponse(200, ``) },
			method:  http.MethodGet,
			url:     "http://localhost:4000/x",
			wantErr: true,
		},
		{
			name:       "given method stub, then matches method",
			setup:      func(m *MockTransport) { m.StubMethod(http.MethodPost, 202, `p`).StubResponse(200, ``) },
			method:     http.MethodPost,
			url:        "http://api.test/x",
			wantStatus: 202,
			wantBody:   "p",
		},
		{
			name:    "given no stubs, then fails",
			setup:   func(*MockTransport) {},
			method:  http.MethodGet,
			url:     "http://api.test/x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMockTransport()
			tt.setup(m)

			resp, err := doMock(t, m, tt.method, tt.url)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantBody, string(body))
			assert.Equal(t, tt.url, resp.Request.URL.String())
		})
	}
}

func TestMockTransport_StubErrorTimes(t *testing.T) {
	m := NewMockTransport().
		StubErrorTimes(2, errors.New("network")).
		StubResponse(200, `{}`)

	_, err := doMock(t, m, http.MethodGet, "http://api.test/x")
	assert.Error(t, err)
	_, err = doMock(t, m, http.MethodGet, "http://api.test/x")
	assert.Error(t, err)
	resp, err := doMock(t, m, http.MethodGet, "http://api.test/x")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMockTransport_BodyReadableEveryTime(t *testing.T) {
	m := NewMockTransport().StubResponse(200, `same`)

	for i := 0; i < 3; i++ {
		resp, err := doMock(t, m, http.MethodGet, "http://api.test/x")
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, "same", string(body))
	}
}

func TestMockTransport_Recording(t *testing.T) {
	var hooked int
	m := NewMockTransport().
		StubResponse(200, `{}`).
		OnRequest(func(*http.Request) { hooked++ })

	assert.Nil(t, m.LastRequest())

	_, _ = doMock(t, m, http.MethodGet, "http://api.test/a")
	_, _ = doMock(t, m, http.MethodGet, "http://api.test/b")

	assert.Equal(t, 2, m.RequestCount())
	assert.Equal(t, 2, hooked)
	assert.Len(t, m.Requests(), 2)
	assert.Equal(t, []string{"http://api.test/a", "http://api.test/b"}, m.RequestedURLs())
	assert.Equal(t, "/b", m.LastRequest().URL.Path)

	m.Reset()
	assert.Zero(t, m.RequestCount())
	_, err := doMock(t, m, http.MethodGet, "http://api.test/a")
	assert.Error(t, err, "reset clears stubs")
}

func TestMockTransport_CancelledContext(t *testing.T) {
	m := NewMockTransport().StubResponse(200, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://api.test/x", nil)
	_, err := m.RoundTrip(req)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.RequestCount())
}
