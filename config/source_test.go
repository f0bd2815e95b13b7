package config

import (
	"context"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/kroma-labs/newsdesk-go/httpclient"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Reload(t *testing.T) {
	t.Run("given changed file, then reload serves new base URL", func(t *testing.T) {
		path := writeFile(t, "api:\n  base_url: http://localhost:4000\n")
		src, err := NewSource(WithFile(path), environ())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:4000", src.BaseURL())

		require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://api.test\n"), 0o600))
		require.NoError(t, src.Reload())

		assert.Equal(t, "http://api.test", src.BaseURL())
		assert.Equal(t, "http://api.test", src.Config().API.BaseURL)
	})

	t.Run("given invalid file on reload, then keeps previous config", func(t *testing.T) {
		path := writeFile(t, "api:\n  base_url: http://localhost:4000\n")
		src, err := NewSource(WithFile(path), environ())
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("api:\n  retries: -3\n"), 0o600))
		assert.Error(t, src.Reload())

		assert.Equal(t, "http://localhost:4000", src.BaseURL())
		assert.Zero(t, src.Config().API.Retries)
	})

	t.Run("given invalid initial config, then NewSource fails", func(t *testing.T) {
		_, err := NewSource(environ("NEWSDESK_LOG_LEVEL=loud"))
		assert.Error(t, err)
	})
}

func TestSource_DrivesClientBaseURL(t *testing.T) {
	path := writeFile(t, "api:\n  base_url: http://localhost:4000\n")
	src, err := NewSource(WithFile(path), environ())
	require.NoError(t, err)

	mock := httpclient.NewMockTransport().
		StubHost("localhost:4002", http.StatusOK, `{}`).
		StubHost("api.test", http.StatusOK, `{}`).
		StubError(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})
	client := httpclient.New(
		httpclient.WithBaseURLSource(src),
		httpclient.WithMockTransport(mock),
	)

	_, err = client.Request("ListArticles").Get(context.Background(), "/articles")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4002", client.State().Learned())

	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://api.test\n"), 0o600))
	require.NoError(t, src.Reload())

	res, err := client.Request("ListArticles").Get(context.Background(), "/articles")
	require.NoError(t, err)
	assert.Equal(t, "http://api.test", res.BaseURL)
	assert.Empty(t, client.State().Learned())
}

func TestSource_Watch(t *testing.T) {
	t.Run("given no file, then watch is a no-op", func(t *testing.T) {
		src, err := NewSource(environ())
		require.NoError(t, err)
		assert.NoError(t, src.Watch(zerolog.Nop()))
		assert.NoError(t, src.Close())
	})

	t.Run("given file change, then reloads", func(t *testing.T) {
		path := writeFile(t, "api:\n  base_url: http://localhost:4000\n")
		src, err := NewSource(WithFile(path), environ())
		require.NoError(t, err)

		require.NoError(t, src.Watch(zerolog.Nop()))
		defer src.Close()

		require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://api.test\n"), 0o600))

		assert.Eventually(t, func() bool {
			return src.BaseURL() == "http://api.test"
		}, 3*time.Second, 20*time.Millisecond)
	})
}
