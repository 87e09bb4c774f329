package security

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenBytes sizes bearer tokens at 24 random bytes (48 hex chars), matching
// what deployed devices and clients already store.
const tokenBytes = 24

// NewToken returns a new opaque bearer token: hex-encoded random bytes.
// Tokens carry no claims and never expire; revocation is deletion of the
// stored token row.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
