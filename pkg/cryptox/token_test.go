package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("produces unique URL-safe tokens", func(t *testing.T) {
		a, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		b, err := GenerateToken(TokenSize256)
		require.NoError(t, err)

		require.NotEqual(t, a, b)
		require.Len(t, a, 43) // 32 bytes base64url without padding
		require.NotContains(t, a, "+")
		require.NotContains(t, a, "/")
		require.NotContains(t, a, "=")
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-1)
		require.Error(t, err)
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("some-opaque-token")
	require.Equal(t, fp, FingerprintToken("some-opaque-token"))
	require.NotEqual(t, fp, FingerprintToken("some-other-token"))
	require.Len(t, fp, 43)
}
