// Package cryptox derives and verifies password hashes for locally
// registered accounts.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const saltSize = 16

func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// HashPassword returns hex encoded argon2id hash and salt for password.
func HashPassword(password string) (hash, salt string) {
	s := newSalt()
	p := []byte(password)
	defer Wipe(p)

	return hex.EncodeToString(DeriveKey(p, s)), hex.EncodeToString(s)
}

// VerifyPassword reports whether password matches the stored hex hash/salt pair.
func VerifyPassword(password, hash, salt string) (bool, error) {
	s, err := hex.DecodeString(salt)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	want, err := hex.DecodeString(hash)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	p := []byte(password)
	defer Wipe(p)

	return subtle.ConstantTimeCompare(DeriveKey(p, s), want) == 1, nil
}

// Wipe zeroes b. Passwords read from the terminal are wiped after use.
func Wipe(b []byte) {
	clear(b)
}

func newSalt() []byte {
	s := make([]byte, saltSize)
	_, _ = rand.Read(s)
	return s
}
