package internal

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

const nonceSize = 32

// NewNonce returns a fresh 32-byte random nonce, Base64 encoded. One nonce
// binds exactly one authorization attempt to its redirect payload.
func NewNonce() (string, error) {
	var raw [nonceSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// NonceEqual compares two nonce strings in constant time.
func NonceEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
