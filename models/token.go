package models

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns 32 random bytes hex encoded
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
