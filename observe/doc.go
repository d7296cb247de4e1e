// Package observe provides observability primitives for media fetches.
//
// It wires OpenTelemetry tracing and metrics plus zerolog-backed structured
// logging. It performs no fetching itself: the proxy wraps its delegated
// calls with a Middleware built from an Observer.
package observe
