// Package token holds the secret-handling primitives shared by the
// magic-link and API token flows: random secret generation, one-way
// hashing, display masking and constant-time comparison.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Generate returns a URL-safe secret carrying length bytes of entropy
// from the platform CSPRNG.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", length)
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Hash returns the hex SHA-256 digest of a raw secret. Stored instead of
// the secret itself; lookups recompute the digest from caller input.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Mask renders a secret for display: first 8 and last 4 characters.
// Never sufficient to authenticate.
func Mask(raw string) string {
	if len(raw) < 12 {
		return "..."
	}
	return raw[:8] + "..." + raw[len(raw)-4:]
}

// ConstantTimeEqual compares two strings without leaking a timing side
// channel on the match length.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
