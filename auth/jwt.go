package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTSignerConfig configures the JWT signer.
type JWTSignerConfig struct {
	// Key is the HMAC secret. Required.
	Key []byte

	// KeyID is set as the kid header when non-empty.
	KeyID string

	// Issuer is the iss claim.
	// Default: "mediaproxy"
	Issuer string

	// Subject is the sub claim.
	Subject string

	// Audience is the aud claim.
	Audience string

	// TTL is the token lifetime.
	// Default: 5 minutes
	TTL time.Duration

	// RefreshBefore is how long before expiry a cached token is replaced.
	// Default: TTL/10
	RefreshBefore time.Duration

	// Now returns the current time. Default: time.Now
	Now func() time.Time
}

// JWTSigner mints HS256 tokens and caches the current one.
type JWTSigner struct {
	config JWTSignerConfig

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewJWTSigner creates a signer. An empty key returns ErrMissingKey.
func NewJWTSigner(config JWTSignerConfig) (*JWTSigner, error) {
	if len(config.Key) == 0 {
		return nil, ErrMissingKey
	}
	if config.Issuer == "" {
		config.Issuer = "mediaproxy"
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.RefreshBefore <= 0 || config.RefreshBefore >= config.TTL {
		config.RefreshBefore = config.TTL / 10
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &JWTSigner{config: config}, nil
}

// Token returns a signed token valid for at least RefreshBefore.
func (s *JWTSigner) Token(_ context.Context) (string, error) {
	now := s.config.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && now.Before(s.expires.Add(-s.config.RefreshBefore)) {
		return s.token, nil
	}

	expires := now.Add(s.config.TTL)
	claims := jwt.RegisteredClaims{
		Issuer:    s.config.Issuer,
		Subject:   s.config.Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	if s.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.config.Audience}
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if s.config.KeyID != "" {
		tok.Header["kid"] = s.config.KeyID
	}

	signed, err := tok.SignedString(s.config.Key)
	if err != nil {
		return "", fmt.Errorf("%w: sign: %w", ErrTokenUnavailable, err)
	}

	s.token = signed
	s.expires = expires
	return signed, nil
}

var _ TokenSource = (*JWTSigner)(nil)
