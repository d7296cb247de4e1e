package auth

import "context"

// TokenSource supplies the credential attached to outgoing requests.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: a failure to produce a credential should wrap ErrTokenUnavailable
//     or ErrMissingKey.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same credential.
type StaticToken string

// Token returns the credential, or ErrTokenUnavailable when it is empty.
func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrTokenUnavailable
	}
	return string(s), nil
}

var _ TokenSource = StaticToken("")
