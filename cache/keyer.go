package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Keyer derives deterministic string keys from a Key.
//
// Contract:
// - Determinism: equal keys must produce equal strings.
// - Injectivity: distinct keys must not collide in practice.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Derive returns the string form of key.
	Derive(key Key) (string, error)
}

// DefaultKeyer generates SHA-256 based keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Derive generates a deterministic key.
// Format: media:<hash>
// where hash is the hex SHA-256 of each part's raw bytes, each preceded by
// its length as a big-endian uint64. IDs are opaque byte strings, so nothing
// is normalized or re-encoded.
func (k *DefaultKeyer) Derive(key Key) (string, error) {
	h := sha256.New()
	for _, part := range [2]string{key.VideoID, key.Quality} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write([]byte(part))
	}
	return "media:" + hex.EncodeToString(h.Sum(nil)), nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
