package cryptox

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCode_SixDigits(t *testing.T) {
	for range 500 {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateNumericCode_Varies(t *testing.T) {
	seen := make(map[string]struct{})
	for range 50 {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	require.Greater(t, len(seen), 40)
}

func TestGenerateNumericCode_Bounds(t *testing.T) {
	code, err := GenerateNumericCode(1)
	require.NoError(t, err)
	require.Len(t, code, 1)

	_, err = GenerateNumericCode(0)
	require.Error(t, err)
	_, err = GenerateNumericCode(19)
	require.Error(t, err)
}
