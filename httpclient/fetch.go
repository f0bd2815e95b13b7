package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Do performs one logical request and produces exactly one of:
//   - a *Result for a 2xx response (NoContent for 204),
//   - an *HTTPError for any other status, returned without retry,
//   - a *NetworkError once every candidate sweep has failed, or the
//     offline sentinel Result with a nil error when AllowOffline is set.
//
// Invalid requests fail with a *ValidationError before any I/O.
//
// Each attempt is a sweep over the candidate base URLs in order. When the
// configured base is localhost or 127.0.0.1 on port 4000 the candidates
// are ports 4000 then 4001..4005; otherwise the configured (or learned)
// base is the only candidate. A sweep that ends without a response is
// followed by a wait of RetryDelayBase × 2^attempt, up to Retries times.
//
// A base other than the first candidate that answers successfully is
// learned, and later requests start from it until the configured base URL
// changes.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	req = req.withDefaults(c.defaults)
	if err := req.validate(); err != nil {
		return nil, err
	}

	body, err := req.encodeBody()
	if err != nil {
		return nil, err
	}

	if c.group != nil && req.Method == http.MethodGet && body == nil {
		return c.doCoalesced(ctx, req)
	}
	return c.do(ctx, req, body)
}

func (c *Client) do(ctx context.Context, req Request, body []byte) (*Result, error) {
	configured := c.source.BaseURL()
	initial := c.state.resolve(configured)

	header, err := c.buildHeader(ctx, req, initial)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, req.Timeout)
	defer cancel()

	ctx, span := c.startSpan(ctx, req)
	defer span.End()

	s := &sweep{
		client:     c,
		req:        req,
		body:       body,
		header:     header,
		configured: configured,
		initial:    initial,
		candidates: candidateBases(initial),
	}

	res, _ := backoff.Retry(ctx, func() (*Result, error) {
		return s.run(ctx)
	},
		backoff.WithBackOff(newSweepBackOff(req.RetryDelayBase)),
		backoff.WithMaxTries(uint(req.Retries)+1),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.onRetry(ctx, span, err, next)
		}),
	)

	span.SetAttributes(attribute.Int("http.attempts", s.attempts))

	if res != nil {
		span.SetAttributes(
			attribute.Int("http.response.status_code", res.StatusCode),
			attribute.String("http.base_url", res.BaseURL),
		)
		return res, nil
	}

	if s.httpErr != nil {
		setSpanError(span, s.httpErr, errorTypeFromStatusCode(s.httpErr.StatusCode))
		return nil, s.httpErr
	}

	netErr := s.networkError(ctx)
	setSpanError(span, netErr, classifyError(netErr.Err))
	if req.Retries > 0 {
		c.config.Metrics.recordRetryExhausted(ctx, c.config.baseAttributes())
	}

	c.debugLog().
		Str("operation", req.Operation).
		Str("path", req.Path).
		Strs("urls", netErr.URLs).
		Int("attempts", netErr.Attempts).
		Bool("offline", req.AllowOffline).
		Err(netErr.Err).
		Msg("request failed at network level")

	if req.AllowOffline {
		return offlineResult(netErr), nil
	}
	return nil, netErr
}

// buildHeader returns the effective headers for every attempt of req.
//
// Content-Type is always application/json, caller headers win, and the
// bearer token is only added when the caller did not set Authorization.
// net/http canonicalizes header names, so that check ignores case.
// Interceptors run once, on a template request aimed at the first
// candidate.
func (c *Client) buildHeader(ctx context.Context, req Request, initial string) (http.Header, error) {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		header.Set(k, v)
	}

	if _, set := header["Authorization"]; !set && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	target, err := url.Parse(joinURL(initial, req.Path))
	if err != nil {
		target = &url.URL{Path: req.Path}
	}
	tmpl := (&http.Request{
		Method: req.Method,
		URL:    target,
		Header: header,
	}).WithContext(ctx)

	if err := c.interceptors.ApplyRequestInterceptors(tmpl); err != nil {
		return nil, fmt.Errorf("request interceptor: %w", err)
	}
	return tmpl.Header, nil
}

// send performs one underlying HTTP call and classifies it.
func (c *Client) send(ctx context.Context, req Request, header http.Header, body []byte, target string) outcome {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return outcome{kind: outcomeNetwork, err: err}
	}
	httpReq.Header = header.Clone()

	start := time.Now()
	//nolint:bodyclose // classify closes the body
	resp, err := c.httpClient.Do(httpReq)
	out := classify(resp, err, req.Result)

	evt := c.debugLog().
		Str("operation", req.Operation).
		Str("method", req.Method).
		Str("url", target).
		Dur("duration", time.Since(start)).
		Stringer("outcome", out.kind)
	switch out.kind {
	case outcomeHTTPError:
		evt = evt.Int("status", out.httpErr.StatusCode)
	case outcomeNetwork:
		evt = evt.Err(out.err)
	default:
		evt = evt.Int("status", out.result.StatusCode)
	}
	if c.debug {
		evt = evt.Str("curl", generateCurlCommand(req.Method, target, httpReq.Header, body))
	}
	evt.Msg("HTTP attempt")

	return out
}

func (c *Client) startSpan(ctx context.Context, req Request) (context.Context, trace.Span) {
	name := "HTTP " + req.Method
	if req.Operation != "" {
		name += " " + req.Operation
	}

	attrs := append(c.config.baseAttributes(),
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
		attribute.Int("http.retry.max", req.Retries),
	)
	return c.config.Tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// sweep carries the state of one logical request across attempts.
type sweep struct {
	client *Client
	req    Request
	body   []byte
	header http.Header

	// configured is the base URL read at the start of the request.
	configured string

	// initial is the first candidate: the learned base or configured.
	initial    string
	candidates []string

	attempts int
	urls     []string
	seen     map[string]struct{}
	lastErr  error
	httpErr  *HTTPError
}

// run performs one candidate sweep. It returns the first successful result,
// a permanent error on an HTTP error, or the last network failure.
func (s *sweep) run(ctx context.Context) (*Result, error) {
	s.attempts++

	for _, base := range s.candidates {
		// Once the deadline has passed every remaining candidate would fail
		// the same way without touching the network.
		if ctx.Err() != nil {
			break
		}

		target := joinURL(base, s.req.Path)
		s.track(target)

		out := s.client.send(ctx, s.req, s.header, s.body, target)
		switch out.kind {
		case outcomeHTTPError:
			s.httpErr = out.httpErr
			return nil, backoff.Permanent(out.httpErr)

		case outcomeSuccess, outcomeNoContent:
			out.result.BaseURL = base
			if base != s.initial {
				s.learn(ctx, base)
			}
			return out.result, nil

		default:
			s.lastErr = out.err
		}
	}

	if s.lastErr == nil {
		s.lastErr = context.Cause(ctx)
	}
	return nil, s.lastErr
}

// learn records base as the learned base and reports the switch.
func (s *sweep) learn(ctx context.Context, base string) {
	c := s.client
	if !c.state.learn(s.configured, base) {
		return
	}

	c.config.Metrics.recordFallbackSwitch(ctx, c.config.baseAttributes())
	trace.SpanFromContext(ctx).AddEvent("http.base_url.learned", trace.WithAttributes(
		attribute.String("http.base_url.from", s.initial),
		attribute.String("http.base_url.to", base),
	))
	c.debugLog().
		Str("configured", s.configured).
		Str("learned", base).
		Msg("learned fallback base URL")
}

// onRetry is called before each backoff wait.
func (s *sweep) onRetry(ctx context.Context, span trace.Span, err error, next time.Duration) {
	c := s.client
	errorType := classifyError(err)

	span.AddEvent("http.retry", trace.WithAttributes(
		attribute.Int("retry.attempt", s.attempts),
		attribute.Int64("retry.delay_ms", next.Milliseconds()),
		attribute.String("error.type", errorType),
	))
	c.config.Metrics.recordRetryAttempt(ctx, c.config.baseAttributes(), s.attempts)

	c.debugLog().
		Str("operation", s.req.Operation).
		Str("path", s.req.Path).
		Int("attempt", s.attempts).
		Dur("delay", next).
		Str("error_type", errorType).
		Err(err).
		Msg("all candidates failed, backing off")
}

// track records target once, in first-attempt order.
func (s *sweep) track(target string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[target]; ok {
		return
	}
	s.seen[target] = struct{}{}
	s.urls = append(s.urls, target)
}

// networkError builds the terminal failure. When the request context ended
// the loop, its cause leads the message.
func (s *sweep) networkError(ctx context.Context) *NetworkError {
	cause := s.lastErr
	if ctxErr := context.Cause(ctx); ctxErr != nil && !errors.Is(cause, ctxErr) {
		if cause == nil {
			cause = ctxErr
		} else {
			cause = fmt.Errorf("%w: %w", ctxErr, cause)
		}
	}

	return &NetworkError{
		Path:     s.req.Path,
		URLs:     s.urls,
		Attempts: s.attempts,
		Err:      cause,
	}
}

// withTimeout derives the per-request context. A non-positive timeout
// still returns a cancelable context.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
