package proxy

import "errors"

var (
	// ErrInvalidArgument indicates New or an Option received an unusable value.
	ErrInvalidArgument = errors.New("proxy: invalid argument")

	// ErrFactory indicates the factory produced no service. The proxy stays
	// uninitialized and the next cache miss retries the factory.
	ErrFactory = errors.New("proxy: factory produced no service")

	// ErrContractViolation indicates the real service returned something that
	// is not a byte sequence. Nothing is cached.
	ErrContractViolation = errors.New("proxy: service returned a non-bytes result")
)
