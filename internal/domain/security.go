package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ─── PIN Hashing ────────────────────────────────────────────────────────────
// Single round of unsalted SHA-256, kept bit-for-bit compatible with hashes
// already stored remotely. Weak against offline brute force of short numeric
// PINs; a hardening candidate, not silently replaced.

// HashPIN returns the lowercase 64-char hex SHA-256 of the raw PIN bytes.
// A blank PIN hashes to "" — meaning "no credential set".
func HashPIN(pin string) string {
	if strings.TrimSpace(pin) == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// ValidatePIN compares a candidate PIN against a stored digest.
// A blank stored hash always fails: absent credentials never authenticate.
func ValidatePIN(pin, storedHash string) bool {
	if strings.TrimSpace(storedHash) == "" {
		return false
	}
	return HashPIN(pin) == storedHash
}
