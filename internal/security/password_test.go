package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordDistinctSalts(t *testing.T) {
	first, err := HashPassword("admin123")
	require.NoError(t, err)
	second, err := HashPassword("admin123")
	require.NoError(t, err)

	assert.NotEqual(t, string(first), string(second))

	for _, hash := range [][]byte{first, second} {
		ok, err := VerifyPassword("admin123", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, stored := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$garbage",
		"$bcrypt$whatever$x$y",
	} {
		ok, err := VerifyPassword("anything", []byte(stored))
		assert.Error(t, err, "stored=%q", stored)
		assert.False(t, ok)
	}
}
