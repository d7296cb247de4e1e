package auth

import (
	"fmt"
	"net/http"
)

// Header defaults.
const (
	DefaultHeaderName = "Authorization"
	BearerPrefix      = "Bearer "
	APIKeyHeaderName  = "X-API-Key"
)

// Transport is an http.RoundTripper that attaches a credential header.
// The original request is never modified.
type Transport struct {
	// Source supplies the credential. Required.
	Source TokenSource

	// HeaderName is the header to set.
	// Default: "Authorization"
	HeaderName string

	// Prefix is prepended to the credential, e.g. "Bearer ".
	Prefix string

	// Base performs the request. Default: http.DefaultTransport
	Base http.RoundTripper
}

// BearerTransport sends tokens from src as "Authorization: Bearer <token>".
func BearerTransport(src TokenSource, base http.RoundTripper) *Transport {
	return &Transport{Source: src, HeaderName: DefaultHeaderName, Prefix: BearerPrefix, Base: base}
}

// APIKeyTransport sends key as "X-API-Key: <key>".
func APIKeyTransport(key string, base http.RoundTripper) *Transport {
	return &Transport{Source: StaticToken(key), HeaderName: APIKeyHeaderName, Base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Source == nil {
		closeBody(req)
		return nil, ErrTokenUnavailable
	}

	token, err := t.Source.Token(req.Context())
	if err != nil {
		closeBody(req)
		return nil, fmt.Errorf("auth: credential for %s: %w", req.URL.Host, err)
	}

	name := t.HeaderName
	if name == "" {
		name = DefaultHeaderName
	}

	r := req.Clone(req.Context())
	r.Header.Set(name, t.Prefix+token)

	return t.base().RoundTrip(r)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

var _ http.RoundTripper = (*Transport)(nil)
