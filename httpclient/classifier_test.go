package httpclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func newClassifierResponse(status int, body string) (*http.Response, *trackingBody) {
	tb := &trackingBody{Reader: bytes.NewReader([]byte(body))}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       tb,
		Request:    &http.Request{URL: &url.URL{Scheme: "http", Host: "api.test", Path: "/x"}},
	}, tb
}

func TestClassify(t *testing.T) {
	type args struct {
		status int
		body   string
		target any
	}
	tests := []struct {
		name        string
		args        args
		wantKind    outcomeKind
		wantData    any
		wantMessage string
	}{
		{
			name:     "given 200 with object, then success with generic data",
			args:     args{status: http.StatusOK, body: `{"ok":true}`},
			wantKind: outcomeSuccess,
			wantData: map[string]any{"ok": true},
		},
		{
			name:     "given 200 with empty body, then success with nil data",
			args:     args{status: http.StatusOK},
			wantKind: outcomeSuccess,
		},
		{
			name:     "given 204 with garbage body, then no content",
			args:     args{status: http.StatusNoContent, body: "garbage"},
			wantKind: outcomeNoContent,
		},
		{
			name:     "given 200 with invalid JSON, then network outcome",
			args:     args{status: http.StatusOK, body: "<html>"},
			wantKind: outcomeNetwork,
		},
		{
			name:        "given 500 with body, then HTTP error with body",
			args:        args{status: http.StatusInternalServerError, body: "boom"},
			wantKind:    outcomeHTTPError,
			wantMessage: "boom",
		},
		{
			name:        "given 404 without body, then HTTP error with status text",
			args:        args{status: http.StatusNotFound},
			wantKind:    outcomeHTTPError,
			wantMessage: "Not Found",
		},
		{
			name:        "given 302 without redirect follow, then HTTP error",
			args:        args{status: http.StatusFound, body: " moved \n"},
			wantKind:    outcomeHTTPError,
			wantMessage: "moved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := newClassifierResponse(tt.args.status, tt.args.body)

			got := classify(resp, nil, tt.args.target)

			assert.Equal(t, tt.wantKind, got.kind)
			assert.True(t, body.closed)

			switch got.kind {
			case outcomeSuccess, outcomeNoContent:
				require.NotNil(t, got.result)
				assert.Equal(t, tt.wantData, got.result.Data)
				assert.Equal(t, "http://api.test/x", got.result.URL)
				assert.Equal(t, tt.args.status, got.result.StatusCode)
			case outcomeHTTPError:
				require.NotNil(t, got.httpErr)
				assert.Equal(t, tt.wantMessage, got.httpErr.Message)
				assert.Equal(t, tt.args.status, got.httpErr.StatusCode)
			case outcomeNetwork:
				assert.True(t, isMalformedResponse(got.err))
			}
		})
	}

	t.Run("given transport error, then network outcome with the error", func(t *testing.T) {
		want := errors.New("connection refused")
		got := classify(nil, want, nil)
		assert.Equal(t, outcomeNetwork, got.kind)
		assert.Equal(t, want, got.err)
	})

	t.Run("given typed target, then decodes into it", func(t *testing.T) {
		var target struct {
			Title string `json:"title"`
		}
		resp, _ := newClassifierResponse(http.StatusOK, `{"title":"Hello"}`)

		got := classify(resp, nil, &target)

		require.Equal(t, outcomeSuccess, got.kind)
		assert.Equal(t, "Hello", target.Title)
		assert.Same(t, &target, got.result.Data)
	})

	t.Run("given target of wrong shape, then malformed", func(t *testing.T) {
		var target []string
		resp, _ := newClassifierResponse(http.StatusOK, `{"title":"Hello"}`)

		got := classify(resp, nil, &target)

		require.Equal(t, outcomeNetwork, got.kind)
		var malformed *MalformedResponseError
		require.ErrorAs(t, got.err, &malformed)
		assert.Equal(t, "http://api.test/x", malformed.URL)
	})
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "success", outcomeSuccess.String())
	assert.Equal(t, "no_content", outcomeNoContent.String())
	assert.Equal(t, "http_error", outcomeHTTPError.String())
	assert.Equal(t, "network_error", outcomeNetwork.String())
	assert.Equal(t, "unknown", outcomeKind(42).String())
}
