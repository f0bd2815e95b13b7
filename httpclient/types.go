package httpclient

import "net/http"

// RoundTripper mirrors http.RoundTripper so mocks.RoundTripper can be
// generated for transport chain tests.
//
//go:generate mockery --name RoundTripper --output ./mocks --outpkg mocks --with-expecter
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}
