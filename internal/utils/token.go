package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the number of random bytes in a bearer secret. 64 bytes from
// crypto/rand carry far more than the 256 bits of entropy needed to make the
// fast digest in HashToken safe for at-rest storage.
const tokenBytes = 64

// GenerateToken returns a new opaque bearer secret, hex-encoded. Used for
// both refresh secrets and email-verification secrets.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 hex digest of a bearer secret for at-rest
// storage. This is deliberately a fast digest, not a password hash: the
// secret itself is high-entropy random material, and refresh happens on
// every access-token renewal.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
