package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	TokenSize128 = 16
	TokenSize256 = 32
)

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateOpaqueToken returns a fresh 256-bit token together with the
// fingerprint that gets persisted in its place. Only the fingerprint may be
// stored; the value is handed to the client exactly once.
func GenerateOpaqueToken() (value, fingerprint string, err error) {
	value, err = GenerateToken(TokenSize256)
	if err != nil {
		return "", "", err
	}
	return value, FingerprintToken(value), nil
}

// FingerprintToken returns the SHA-256 digest of token as unpadded base64url
// (43 chars). Lookups by fingerprint never need the original value.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
