package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantError   string
	}{
		{
			name:        "given body, then message is body",
			status:      http.StatusInternalServerError,
			body:        "boom",
			wantMessage: "boom",
			wantError:   "HTTP 500 http://api.test/err: boom",
		},
		{
			name:        "given blank body, then message is status text",
			status:      http.StatusForbidden,
			body:        "  \n",
			wantMessage: "Forbidden",
			wantError:   "HTTP 403 http://api.test/err: Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newHTTPError("http://api.test/err", tt.status, tt.body)
			assert.Equal(t, tt.wantMessage, err.Message)
			assert.Equal(t, tt.wantError, err.Error())
		})
	}

	t.Run("given wrapped HTTPError, then IsHTTPError finds it", func(t *testing.T) {
		wrapped := fmt.Errorf("list articles: %w", newHTTPError("u", 502, "bad gateway"))

		got, ok := IsHTTPError(wrapped)

		require.True(t, ok)
		assert.Equal(t, 502, got.StatusCode)
	})

	t.Run("given other error, then IsHTTPError reports false", func(t *testing.T) {
		got, ok := IsHTTPError(errors.New("nope"))
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}

func TestNetworkError(t *testing.T) {
	t.Run("given cause, then matches ErrNetwork and cause", func(t *testing.T) {
		err := &NetworkError{
			Path:     "/articles",
			URLs:     []string{"http://localhost:4000/articles", "http://localhost:4001/articles"},
			Attempts: 2,
			Err:      errRefused,
		}

		assert.ErrorIs(t, err, ErrNetwork)
		assert.ErrorIs(t, err, syscall.ECONNREFUSED)
		assert.NotErrorIs(t, err, context.Canceled)
		assert.Equal(t,
			"network request to /articles failed after 2 attempt(s); tried "+
				"http://localhost:4000/articles, http://localhost:4001/articles: "+errRefused.Error(),
			err.Error(),
		)
	})

	t.Run("given no cause, then still matches ErrNetwork", func(t *testing.T) {
		err := &NetworkError{Path: "/x", Attempts: 1}

		assert.ErrorIs(t, err, ErrNetwork)
		assert.Contains(t, err.Error(), "unknown error")
	})
}

func TestValidationError(t *testing.T) {
	cause := errors.New("path must start with /")
	err := &ValidationError{Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "invalid request: path must start with /", err.Error())
	assert.NotErrorIs(t, err, ErrNetwork)
}
