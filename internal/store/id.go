package store

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random hex string suitable as a session token.
func NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "id-unknown"
	}
	return hex.EncodeToString(b[:])
}
