package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID generates a random 128-bit identifier for games, players and
// connections.
func NewID() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// NewSecret generates an opaque player credential (160 bits).
func NewSecret() string {
	bytes := make([]byte, 20)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
