package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "cryptox-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	code := m.Run()
	os.Remove(pepperPath)

	os.Exit(code)
}

func TestHashPassword_PHCFormat(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	require.Equal(t, "argon2id", parts[1])
	require.Equal(t, "v=19", parts[2])
	require.Equal(t, "m=19456,t=2,p=1", parts[3])
	require.NotEmpty(t, parts[4])
	require.NotEmpty(t, parts[5])
	require.False(t, NeedsRehash(hash))
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := HashPassword("samepassword")
	require.NoError(t, err)
	b, err := HashPassword("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, VerifyPassword("samepassword", a))
	require.NoError(t, VerifyPassword("samepassword", b))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"exact match", "correct-password", true},
		{"case difference", "Correct-Password", false},
		{"trailing space", "correct-password ", false},
		{"empty", "", false},
		{"prefix", "correct-passwor", false},
		{"very long", strings.Repeat("x", 10000), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword(tt.password, hash)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestVerifyPassword_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("from-old-system"), bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("from-old-system", string(legacy)))
	require.ErrorIs(t, VerifyPassword("wrong", string(legacy)), ErrPasswordMismatch)
	require.True(t, NeedsRehash(string(legacy)))
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$scrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"truncated bcrypt", "$2b$10$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword("test-password", tt.hash)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, 12)
		require.NotContains(t, seen, password)
		seen[password] = true

		for _, c := range password {
			valid := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			require.True(t, valid, "unexpected character %q", c)
		}
	}
}
