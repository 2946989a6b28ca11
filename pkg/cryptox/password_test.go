package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.ErrorIs(t, VerifyPassword("wrong password", hash), ErrPasswordMismatch)
}

func TestHashPasswordSaltsAreUnique(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same input")
	require.NoError(t, err)
	b, err := HashPassword("same input")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMangledHashes(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=3,p=2$notbase64!!$digest",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$ZGlnZXN0",
	} {
		require.Error(t, VerifyPassword("anything", bad))
	}
}
