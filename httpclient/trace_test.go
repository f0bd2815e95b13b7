package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"given nil, then empty", nil, ""},
		{"given context canceled, then cancelled", context.Canceled, ErrorTypeCancelled},
		{"given deadline exceeded, then timeout", context.DeadlineExceeded, ErrorTypeTimeout},
		{
			"given wrapped deadline, then timeout",
			fmt.Errorf("get: %w", context.DeadlineExceeded),
			ErrorTypeTimeout,
		},
		{
			"given malformed response, then malformed",
			&MalformedResponseError{URL: "u", Err: errors.New("bad json")},
			ErrorTypeMalformed,
		},
		{"given open breaker, then circuit open", gobreaker.ErrOpenState, ErrorTypeCircuitOpen},
		{"given half-open saturation, then circuit open", gobreaker.ErrTooManyRequests, ErrorTypeCircuitOpen},
		{"given rate limited, then rate limited", ErrRateLimited, ErrorTypeRateLimited},
		{"given net timeout, then timeout", timeoutError{}, ErrorTypeTimeout},
		{
			"given DNS error, then dns",
			&net.DNSError{Err: "no such host", Name: "api.invalid"},
			ErrorTypeDNSError,
		},
		{
			"given TLS record error, then tls",
			&tls.RecordHeaderError{Msg: "bad record"},
			ErrorTypeTLSError,
		},
		{"given refused dial, then connection refused", errRefused, ErrorTypeConnectionRefused},
		{"given reset, then connection reset", syscall.ECONNRESET, ErrorTypeConnectionReset},
		{"given unexpected EOF, then eof", io.ErrUnexpectedEOF, ErrorTypeEOF},
		{"given message with x509, then tls", errors.New("x509: unknown authority"), ErrorTypeTLSError},
		{"given message with no such host, then dns", errors.New("lookup: no such host"), ErrorTypeDNSError},
		{"given anything else, then unknown", errors.New("network"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}

func TestErrorTypeFromStatusCode(t *testing.T) {
	assert.Empty(t, errorTypeFromStatusCode(http.StatusOK))
	assert.Empty(t, errorTypeFromStatusCode(http.StatusNoContent))
	assert.Equal(t, "404", errorTypeFromStatusCode(http.StatusNotFound))
	assert.Equal(t, "500", errorTypeFromStatusCode(http.StatusInternalServerError))
}

func newTraceClient(base string, mock *MockTransport) (*Client, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	client := newMockClient(base, mock, WithTracerProvider(tp))
	return client, exporter
}

func TestClient_Spans(t *testing.T) {
	t.Run("given fallback sweep, then one request span with a child per candidate", func(t *testing.T) {
		mock := NewMockTransport().
			StubHost("localhost:4002", http.StatusOK, `{}`).
			StubError(errRefused)
		client, exporter := newTraceClient("http://localhost:4000", mock)

		_, err := client.Request("ListArticles").Get(context.Background(), "/articles")
		require.NoError(t, err)

		spans := exporter.GetSpans()
		require.Len(t, spans, 4)

		var parent tracetest.SpanStub
		var children []tracetest.SpanStub
		for _, s := range spans {
			if s.SpanKind == trace.SpanKindInternal {
				parent = s
			} else {
				children = append(children, s)
			}
		}

		assert.Equal(t, "HTTP GET ListArticles", parent.Name)
		assert.NotEqual(t, codes.Error, parent.Status.Code)
		require.Len(t, children, 3)
		for _, c := range children {
			assert.Equal(t, "HTTP GET", c.Name)
			assert.Equal(t, trace.SpanKindClient, c.SpanKind)
			assert.Equal(t, parent.SpanContext.SpanID(), c.Parent.SpanID())
		}

		var learned bool
		for _, e := range parent.Events {
			if e.Name == "http.base_url.learned" {
				learned = true
			}
		}
		assert.True(t, learned)
	})

	t.Run("given retries, then request span records retry events", func(t *testing.T) {
		mock := NewMockTransport().
			StubErrorTimes(2, errRefused).
			StubResponse(http.StatusOK, `{}`)
		client, exporter := newTraceClient("http://api.test", mock)

		_, err := client.Do(context.Background(), Request{
			Operation:      "GetProfile",
			Path:           "/users/me",
			Retries:        2,
			RetryDelayBase: time.Millisecond,
		})
		require.NoError(t, err)

		var retries int
		for _, s := range exporter.GetSpans() {
			if s.Name != "HTTP GET GetProfile" {
				continue
			}
			for _, e := range s.Events {
				if e.Name == "http.retry" {
					retries++
				}
			}
		}
		assert.Equal(t, 2, retries)
	})

	t.Run("given HTTP error, then request span has error status", func(t *testing.T) {
		mock := NewMockTransport().StubResponse(http.StatusInternalServerError, "boom")
		client, exporter := newTraceClient("http://api.test", mock)

		_, err := client.Request("Explain").Post(context.Background(), "/ai/explain")
		require.Error(t, err)

		for _, s := range exporter.GetSpans() {
			assert.Equal(t, codes.Error, s.Status.Code, s.Name)
		}
	})

	t.Run("given trace context, then traceparent is propagated", func(t *testing.T) {
		mock := NewMockTransport().StubResponse(http.StatusOK, `{}`)
		client, _ := newTraceClient("http://api.test", mock)

		_, err := client.Request("Test").Get(context.Background(), "/x")
		require.NoError(t, err)
		assert.NotEmpty(t, mock.LastRequest().Header.Get("Traceparent"))
	})
}
