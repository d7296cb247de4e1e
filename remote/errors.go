package remote

import "errors"

var (
	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("remote: invalid config")

	// ErrNotFound indicates the backend has no payload for the video and quality.
	ErrNotFound = errors.New("remote: video not found")

	// ErrUnexpectedStatus indicates the backend answered with a non-success status.
	ErrUnexpectedStatus = errors.New("remote: unexpected status")

	// ErrResponseTooLarge indicates the payload exceeded MaxResponseBytes.
	ErrResponseTooLarge = errors.New("remote: response too large")

	// ErrProbeFailed indicates the readiness probe did not succeed.
	ErrProbeFailed = errors.New("remote: readiness probe failed")
)
