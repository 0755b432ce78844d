package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "ehr-auth"

var testSubject = jwtx.SessionSubject{
	UserID:      "01HZX0000000000000000000AA",
	Name:        "Dr. Rahimi",
	Role:        "doctor",
	TOTPEnabled: true,
}

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func TestSignAndVerify(t *testing.T) {
	signer := newSigner(t, "kid-1")
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "kid-1", signer.KID())

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keys, testIssuer)

	now := time.Now().UTC()
	claims := jwtx.NewSessionClaims(testSubject, "sid-1", []string{jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA}, testIssuer, time.Hour, now)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, testSubject.UserID, got.Subject)
	require.Equal(t, "sid-1", got.SID)
	require.Equal(t, "Dr. Rahimi", got.Name)
	require.Equal(t, "doctor", got.Role)
	require.True(t, got.TOTPEnabled)
	require.True(t, got.HasAMR(jwtx.AMRMFA))
	require.False(t, got.HasAMR("hwk"))
	require.NotEmpty(t, got.ID)
}

func TestVerify_Rejects(t *testing.T) {
	signer := newSigner(t, "kid-1")
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keys, testIssuer)

	now := time.Now().UTC()
	sign := func(t *testing.T, s jwtx.Signer, issuer string, ttl time.Duration, at time.Time) string {
		token, err := s.Sign(jwtx.NewSessionClaims(testSubject, "sid", nil, issuer, ttl, at))
		require.NoError(t, err)
		return token
	}

	t.Run("expired", func(t *testing.T) {
		token := sign(t, signer, testIssuer, time.Minute, now.Add(-time.Hour))
		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("within leeway", func(t *testing.T) {
		token := sign(t, signer, testIssuer, time.Minute, now.Add(-time.Minute-10*time.Second))
		_, err := verifier.Verify(token)
		require.NoError(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token := sign(t, signer, "someone-else", time.Hour, now)
		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("unknown key", func(t *testing.T) {
		token := sign(t, newSigner(t, "kid-2"), testIssuer, time.Hour, now)
		_, err := verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token := sign(t, signer, testIssuer, time.Hour, now)
		parts := strings.Split(token, ".")
		other := strings.Split(sign(t, signer, testIssuer, 2*time.Hour, now), ".")
		_, err := verifier.Verify(parts[0] + "." + other[1] + "." + parts[2])
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not-a-token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestJWK(t *testing.T) {
	signer := newSigner(t, "kid-1")
	jwk := signer.PublicJWK()

	require.Equal(t, "OKP", jwk.Kty)
	require.Equal(t, "Ed25519", jwk.Crv)
	require.Equal(t, "sig", jwk.Use)
	require.Equal(t, "kid-1", jwk.Kid)

	pemStr, err := jwk.PEM()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----"))

	t.Run("rejects other key types", func(t *testing.T) {
		_, err := jwtx.JWK{Kty: "RSA"}.PublicKey()
		require.Error(t, err)
		_, err = jwtx.JWK{Kty: "OKP", Crv: "X25519"}.PublicKey()
		require.Error(t, err)
		_, err = jwtx.JWK{Kty: "OKP", Crv: "Ed25519", X: "c2hvcnQ"}.PublicKey()
		require.Error(t, err)
	})

	t.Run("keyset lookup", func(t *testing.T) {
		keys := jwtx.NewKeySet()
		require.False(t, keys.IsReady())
		require.NoError(t, keys.AddJWK(jwk))
		require.True(t, keys.IsReady())

		_, err := keys.Get("kid-1")
		require.NoError(t, err)
		_, err = keys.Get("missing")
		require.ErrorIs(t, err, jwtx.ErrNoKey)
		require.Len(t, keys.PublicJWKS().Keys, 1)
	})
}

func TestEphemeralKeyManager(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err)

	tests := []struct {
		name string
		keys int
		want int
	}{
		{"default", 0, 1},
		{"three keys", 3, 3},
		{"capped", 50, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer, NumKeys: tt.keys})
			require.NoError(t, err)
			require.True(t, km.IsReady())
			require.Equal(t, tt.want, km.NumSigners())
			require.Len(t, km.KeySet.PublicJWKS().Keys, tt.want)

			for range 5 {
				token, err := km.Sign(jwtx.NewSessionClaims(testSubject, "sid", nil, testIssuer, time.Hour, time.Now()))
				require.NoError(t, err)
				claims, err := km.Verifier.Verify(token)
				require.NoError(t, err)
				require.Equal(t, "sid", claims.SID)
			}
		})
	}
}
