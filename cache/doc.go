// Package cache provides the insert-once byte store behind the media proxy.
//
// It provides a Store interface with an in-memory implementation, the
// composite (video ID, quality) Key, and SHA-256-based key derivation for
// request collapsing and telemetry correlation. Entries are never evicted,
// expired or overwritten.
package cache
