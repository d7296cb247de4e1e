package cache

import (
	"errors"
	"strconv"
)

// Sentinel errors for cache operations.
var (
	ErrNilStore = errors.New("cache: store is nil")
)

// Key identifies one fetchable media variant.
type Key struct {
	VideoID string
	Quality string
}

// String returns a human-readable form of the key for logs and errors.
func (k Key) String() string {
	return strconv.Quote(k.VideoID) + "@" + strconv.Quote(k.Quality)
}

// Store holds fetched media bytes keyed by Key.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Immutability: once a key is present its value never changes.
// - Ownership: Add stores its own copy; callers must not modify slices
// returned by Get or Add.
type Store interface {
	// Get retrieves a stored value. Returns (nil, false) on miss.
	Get(key Key) ([]byte, bool)

	// Add stores value under key if the key is absent and returns the value
	// now held for key. added is false when an earlier value was kept.
	Add(key Key, value []byte) (stored []byte, added bool)

	// Len returns the number of stored entries.
	Len() int
}
