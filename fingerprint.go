package auth

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// NewFingerprint returns a fresh revocation fingerprint. Regenerated whenever
// credentials change; every token minted with the old value becomes stale.
func NewFingerprint() string {
	return uuid.NewString()
}

// FingerprintEqual compares a token's embedded fingerprint against the stored
// one in constant time.
func FingerprintEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
