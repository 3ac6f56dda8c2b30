package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecret returns 32 random bytes, base64url encoded.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
