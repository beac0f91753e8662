package security

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey expands the configured master secret into a purpose-bound key, so
// the cookie signer never uses the raw secret directly.
func DeriveKey(secret, purpose string, length int) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("empty secret")
	}

	key := make([]byte, length)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}
