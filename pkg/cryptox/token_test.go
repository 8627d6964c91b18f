package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{TokenSize128, TokenSize256, 24} {
		token, err := GenerateToken(size)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, size)
	}

	_, err := GenerateToken(0)
	require.Error(t, err)
	_, err = GenerateToken(-1)
	require.Error(t, err)
}

func TestGenerateOpaqueToken(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for range 100 {
		value, fp, err := GenerateOpaqueToken()
		require.NoError(t, err)
		require.Len(t, value, 43)
		require.Equal(t, FingerprintToken(value), fp)
		require.NotEqual(t, value, fp)

		require.NotContains(t, seen, value)
		seen[value] = struct{}{}
	}
}

func TestFingerprintToken(t *testing.T) {
	a := FingerprintToken("token-a")
	require.Equal(t, a, FingerprintToken("token-a"))
	require.NotEqual(t, a, FingerprintToken("token-b"))
	require.Len(t, a, 43)
}

func TestGenerateResetCode(t *testing.T) {
	for range 500 {
		code, err := GenerateResetCode()
		require.NoError(t, err)
		require.Len(t, code, ResetCodeDigits)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "unexpected rune %q in %q", r, code)
		}
	}
}

func TestEqualFingerprints(t *testing.T) {
	require.True(t, EqualFingerprints("abc", "abc"))
	require.False(t, EqualFingerprints("abc", "abd"))
	require.False(t, EqualFingerprints("abc", "abcd"))
}
