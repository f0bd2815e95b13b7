// Package httpclient provides a resilient JSON fetch client with local
// dev port fallback, network-failure retries and OpenTelemetry
// instrumentation.
//
// # Quick Start
//
//	client := httpclient.New(
//	    httpclient.WithBaseURL("http://localhost:4000"),
//	    httpclient.WithTokenSource(tokens),
//	    httpclient.WithServiceName("newsdesk"),
//	)
//
//	var articles []Article
//	_, err := client.Request("ListArticles").
//	    Decode(&articles).
//	    Retries(2).
//	    Get(ctx, "/articles")
//
// # Outcomes
//
// Every call ends in exactly one of three ways:
//
//   - Success: a *Result with the decoded body. A 204 yields a Result with
//     NoContent set and no decoding.
//   - HTTP error: the server answered with a non-2xx status. The *HTTPError
//     is returned immediately. It is never retried and no other base URL
//     is tried.
//   - Network failure: no response was obtained on any candidate in any
//     attempt. A *NetworkError (matching ErrNetwork) is returned, or, when
//     the request allows offline operation, a Result with NetworkError set
//     and a nil error.
//
// # Candidate Sweep
//
// Each attempt tries the candidate base URLs in order. The first candidate
// is the learned base if one exists, otherwise the configured base. When
// that base is localhost or 127.0.0.1 on port 4000, ports 4001 through 4005
// on the same host follow. Any other base is the sole candidate.
//
//	attempt 0: :4000 -> :4001 -> ... -> :4005   (all refused)
//	wait 300ms
//	attempt 1: :4000 -> :4001 -> :4002          (200 OK, :4002 learned)
//
// A base that answers successfully and is not the first candidate is
// learned. Later calls start with it and skip the probe, until the
// configured base URL changes.
//
// # Retries
//
// Network failures are retried Retries times. After the n-th failed sweep
// (0-indexed) the client waits RetryDelayBase × 2^n. The request timeout
// covers the whole call: all sweeps and all waits.
//
// # Instrumentation
//
// Each logical request gets an internal span named "HTTP {method}
// {operation}". Each underlying call gets a client span beneath it, so a
// swept request shows one child span per candidate tried.
//
// Metrics recorded:
//
//	http.client.request.duration   per underlying call
//	http.client.active_requests    in-flight underlying calls
//	http.client.request.error      transport errors by error.type
//	http.client.retry.attempts     backoff waits
//	http.client.retry.exhausted    requests that failed after retrying
//	http.client.fallback.switches  learned fallback bases
//	http.client.breaker.requests   breaker decisions (with WithBreaker)
//	http.client.breaker.state      breaker state per host (with WithBreaker)
//
// # Testing
//
// MockTransport stubs responses by path, host or call count:
//
//	mock := httpclient.NewMockTransport().
//	    StubErrorTimes(1, errors.New("network")).
//	    StubResponse(http.StatusOK, `{"ok":true}`)
//
//	client := httpclient.New(
//	    httpclient.WithBaseURL("http://api.test"),
//	    httpclient.WithMockTransport(mock),
//	)
package httpclient
