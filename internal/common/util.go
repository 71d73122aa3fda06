package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// MakeRandHexString returns size random bytes encoded as hex.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsUniqueID reports whether id asks the server to generate an identifier.
func IsUniqueID(id string) bool {
	id = strings.TrimSpace(id)
	return id == "" || id == UniqueID
}
