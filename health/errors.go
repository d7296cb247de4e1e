package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked indicates a checker panicked while running.
	ErrCheckPanicked = errors.New("health: check panicked")

	// ErrUnhealthy marks a Report whose failing checker gave no error.
	ErrUnhealthy = errors.New("health: unhealthy")
)
