package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptors(t *testing.T) {
	tests := []struct {
		name        string
		interceptor RequestInterceptor
		header      string
		want        string
	}{
		{
			name:        "given API key interceptor, then sets the key header",
			interceptor: APIKeyInterceptor("X-API-Key", "my-secret-key"),
			header:      "X-API-Key",
			want:        "my-secret-key",
		},
		{
			name:        "given user agent interceptor, then sets User-Agent",
			interceptor: UserAgentInterceptor("newsdesk/1.0"),
			header:      "User-Agent",
			want:        "newsdesk/1.0",
		},
		{
			name:        "given correlation ID interceptor, then sets the generated ID",
			interceptor: CorrelationIDInterceptor("X-Correlation-ID", func() string { return "corr-1" }),
			header:      "X-Correlation-ID",
			want:        "corr-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var captured string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = r.Header.Get(tt.header)
				_, _ = w.Write([]byte(`{}`))
			}))
			defer server.Close()

			client := New(WithBaseURL(server.URL), WithRequestInterceptor(tt.interceptor))

			_, err := client.Request("Test").Get(context.Background(), "/test")
			require.NoError(t, err)
			assert.Equal(t, tt.want, captured)
		})
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	t.Run("given no request ID, then sets a UUID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)

		require.NoError(t, RequestIDInterceptor()(req))

		_, err := uuid.Parse(req.Header.Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("given caller request ID, then keeps it", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, "mine")

		require.NoError(t, RequestIDInterceptor()(req))

		assert.Equal(t, "mine", req.Header.Get(RequestIDHeader))
	})
}

func TestInterceptorChain(t *testing.T) {
	t.Run("given several interceptors, then runs them in order", func(t *testing.T) {
		var order []int
		chain := NewInterceptorChain()
		for i := 1; i <= 3; i++ {
			chain.AddRequestInterceptor(func(*http.Request) error {
				order = append(order, i)
				return nil
			})
		}

		require.NoError(t, chain.ApplyRequestInterceptors(httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("given failing interceptor, then stops the chain", func(t *testing.T) {
		wantErr := errors.New("denied")
		var ranAfter bool
		chain := NewInterceptorChain()
		chain.AddRequestInterceptor(func(*http.Request) error { return wantErr })
		chain.AddRequestInterceptor(func(*http.Request) error {
			ranAfter = true
			return nil
		})

		err := chain.ApplyRequestInterceptors(httptest.NewRequest(http.MethodGet, "/", nil))

		assert.ErrorIs(t, err, wantErr)
		assert.False(t, ranAfter)
	})

	t.Run("given interceptor reading the URL, then sees the first candidate", func(t *testing.T) {
		var seen string
		mock := NewMockTransport().StubResponse(http.StatusOK, `{}`)
		client := newMockClient("http://localhost:4000", mock,
			WithRequestInterceptor(func(r *http.Request) error {
				seen = r.URL.String()
				return nil
			}))

		_, err := client.Request("Test").Get(context.Background(), "/articles")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:4000/articles", seen)
	})
}
