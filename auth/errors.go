package auth

import "errors"

var (
	// ErrMissingKey indicates a signer was configured without a signing key.
	ErrMissingKey = errors.New("auth: signing key is required")

	// ErrTokenUnavailable indicates no credential could be produced for a request.
	ErrTokenUnavailable = errors.New("auth: token unavailable")
)
