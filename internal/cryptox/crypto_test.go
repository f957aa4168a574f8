package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	// одинаковые входы -> одинаковый вывод
	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	require.Len(t, key1, 32)
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt := HashPassword("hunter22")
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := VerifyPassword("hunter22", hash, salt)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("hunter23", hash, salt)
	require.NoError(t, err)
	require.False(t, ok)

	// та же строка -> другая соль
	hash2, salt2 := HashPassword("hunter22")
	require.NotEqual(t, salt, salt2)
	require.NotEqual(t, hash, hash2)
}

func TestVerifyPassword_BadEncoding(t *testing.T) {
	_, err := VerifyPassword("x", "abcd", "zz")
	require.Error(t, err)

	_, err = VerifyPassword("x", "zz", "abcd")
	require.Error(t, err)
}

func TestWipe(t *testing.T) {
	buf := []byte("secret1")
	Wipe(buf)
	require.Equal(t, make([]byte, 7), buf)

	require.NotPanics(t, func() { Wipe(nil) })
}

func TestNewSalt(t *testing.T) {
	a, b := newSalt(), newSalt()
	require.Len(t, a, saltSize)
	require.NotEqual(t, a, b)
}
