package model

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

func CreateID() string {
	uuid, _ := uuid.NewRandom()
	return base58.Encode(uuid[:])
}

// CreatePasteID returns a 14-character hex token. Paste URLs rely on this
// exact shape.
func CreatePasteID() string {
	buf := make([]byte, 7)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

// CreateToken returns a 32-character hex token for email verification and
// password reset links.
func CreateToken() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
