// Package cryptox implements the password credential codec: the strong
// BLAKE3 form written for every new or migrated credential, and the legacy
// MD5 form that is still accepted on login so it can be rewritten.
package cryptox

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Lengths of the hex encoded digests. A stored credential is treated as
// legacy only when its length equals LegacyHashLen.
const (
	HashLen       = 64
	LegacyHashLen = 32
)

// VerifyResult is the outcome of checking a password against a stored hash.
type VerifyResult int

const (
	PasswordMismatch VerifyResult = iota
	PasswordMatch
	// PasswordMatchLegacy means the password is correct but the stored hash
	// uses the legacy form and must be rewritten.
	PasswordMatchLegacy
)

func (r VerifyResult) String() string {
	switch r {
	case PasswordMatch:
		return "match"
	case PasswordMatchLegacy:
		return "match_legacy"
	default:
		return "mismatch"
	}
}

// HashPassword returns the lowercase hex BLAKE3-256 digest of password.
func HashPassword(password string) string {
	sum := blake3.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// LegacyHashPassword returns the lowercase hex MD5 digest of password.
func LegacyHashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares password with the stored hash in constant time.
func VerifyPassword(password, stored string) VerifyResult {
	if constantTimeEqual(HashPassword(password), stored) {
		return PasswordMatch
	}
	if len(stored) == LegacyHashLen && constantTimeEqual(LegacyHashPassword(password), stored) {
		return PasswordMatchLegacy
	}
	return PasswordMismatch
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
