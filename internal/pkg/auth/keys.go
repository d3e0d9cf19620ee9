package auth

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const cookieKeyInfo = "storefront session cookie v1"

// DeriveKey expands the configured secret into a fixed-size signing key bound to info.
func DeriveKey(secret, info string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("derive key: empty secret")
	}
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
