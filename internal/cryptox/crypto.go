// Package cryptox implements the optional salted credential scheme.
//
// The plain scheme keeps passwords verbatim. With the argon2id scheme a
// password is stored as "argon2id$<salt hex>$<key hex>" instead; Verify
// recognizes both encodings, so records written under either scheme keep
// working after the configuration changes.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/dmitrijs2005/breathepure/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argonPrefix = "argon2id"
	saltSize    = 32
	keySize     = 32
)

// DeriveKey stretches password with salt using Argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// HashPassword returns the argon2id encoding of password with a fresh salt.
func HashPassword(password string) string {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey([]byte(password), salt)
	return strings.Join([]string{argonPrefix, hex.EncodeToString(salt), hex.EncodeToString(key)}, "$")
}

// IsHashed reports whether stored is an argon2id encoding.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, argonPrefix+"$")
}

// Verify compares candidate with the stored credential. Plain stored values
// are compared byte for byte (case-sensitive); argon2id values are
// re-derived with their salt. A malformed argon2id value never matches.
func Verify(stored, candidate string) bool {
	if !IsHashed(stored) {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
	}

	parts := strings.Split(stored, "$")
	if len(parts) != 3 {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil || len(want) != keySize {
		return false
	}

	got := DeriveKey([]byte(candidate), salt)
	return subtle.ConstantTimeCompare(want, got) == 1
}
