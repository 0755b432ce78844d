package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519Key(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)

	key, ok := parsed.(ed25519.PrivateKey)
	require.True(t, ok)
	require.Len(t, key, ed25519.PrivateKeySize)

	other, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.NotEqual(t, pemBytes, other)
}
