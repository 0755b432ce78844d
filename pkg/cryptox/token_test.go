package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		encoded int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.encoded)

			raw, err := base64.RawURLEncoding.DecodeString(token)
			require.NoError(t, err)
			require.Len(t, raw, tt.size)

			other, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, other)
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := GenerateToken(size)
		require.Error(t, err)
	}
}
