package totpx_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/totpx"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

func TestGenerateSecret(t *testing.T) {
	e := totpx.NewEngine()

	seen := make(map[string]bool)
	for range 20 {
		secret, err := e.GenerateSecret()
		require.NoError(t, err)
		require.Len(t, secret, 32)
		require.NotContains(t, secret, "=")
		require.Equal(t, strings.ToUpper(secret), secret)
		require.False(t, seen[secret])
		seen[secret] = true
	}
}

func TestCheckAt_Window(t *testing.T) {
	e := totpx.NewEngine()
	now := time.Date(2026, 3, 14, 9, 26, 45, 0, time.UTC)

	tests := []struct {
		name   string
		offset time.Duration
		ok     bool
	}{
		{"previous step", -30 * time.Second, true},
		{"current step", 0, true},
		{"next step", 30 * time.Second, true},
		{"three steps old", -90 * time.Second, false},
		{"three steps ahead", 90 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := e.CodeAt(testSecret, now.Add(tt.offset))
			require.NoError(t, err)
			require.Len(t, code, 6)
			require.Equal(t, tt.ok, e.CheckAt(code, testSecret, now))
		})
	}
}

func TestCheck_UsesClock(t *testing.T) {
	e := totpx.NewEngine()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e.Now = func() time.Time { return fixed }

	code, err := e.CodeAt(testSecret, fixed)
	require.NoError(t, err)
	require.True(t, e.Check(code, testSecret))
	require.True(t, e.Check(" "+code+" ", testSecret))
}

func TestCheck_Rejects(t *testing.T) {
	e := totpx.NewEngine()
	now := time.Now()
	code, err := e.CodeAt(testSecret, now)
	require.NoError(t, err)

	require.False(t, e.CheckAt("", testSecret, now))
	require.False(t, e.CheckAt(code, "", now))
	require.False(t, e.CheckAt("12345", testSecret, now))
	require.False(t, e.CheckAt("abcdef", testSecret, now))
	require.False(t, e.CheckAt(code, "not-base32!", now))
}

func TestMatchStep(t *testing.T) {
	e := totpx.NewEngine()
	now := time.Date(2026, 3, 14, 9, 26, 45, 0, time.UTC)
	current := now.Unix() / 30

	prev, err := e.CodeAt(testSecret, now.Add(-30*time.Second))
	require.NoError(t, err)
	step, ok := e.MatchStep(prev, testSecret, now)
	require.True(t, ok)
	require.Equal(t, current-1, step)

	cur, err := e.CodeAt(testSecret, now)
	require.NoError(t, err)
	step, ok = e.MatchStep(cur, testSecret, now)
	require.True(t, ok)
	require.Equal(t, current, step)

	old, err := e.CodeAt(testSecret, now.Add(-90*time.Second))
	require.NoError(t, err)
	_, ok = e.MatchStep(old, testSecret, now)
	require.False(t, ok)
}

func TestProvisioningURI(t *testing.T) {
	e := totpx.NewEngine()

	uri, err := e.ProvisioningURI("0012345678", "EHR Portal", testSecret)
	require.NoError(t, err)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	require.Equal(t, "otpauth", u.Scheme)
	require.Equal(t, "totp", u.Host)
	require.Equal(t, "/EHR Portal:0012345678", u.Path)

	q := u.Query()
	require.Equal(t, testSecret, q.Get("secret"))
	require.Equal(t, "EHR Portal", q.Get("issuer"))
	require.Equal(t, "6", q.Get("digits"))
	require.Equal(t, "30", q.Get("period"))
	require.Equal(t, "SHA1", q.Get("algorithm"))

	t.Run("lowercase secret is normalised", func(t *testing.T) {
		lower, err := e.ProvisioningURI("0012345678", "EHR Portal", strings.ToLower(testSecret))
		require.NoError(t, err)
		require.Equal(t, uri, lower)
	})

	t.Run("missing labels", func(t *testing.T) {
		_, err := e.ProvisioningURI("", "EHR Portal", testSecret)
		require.ErrorIs(t, err, totpx.ErrMissingLabel)
		_, err = e.ProvisioningURI("acct", "", testSecret)
		require.ErrorIs(t, err, totpx.ErrMissingLabel)
	})

	t.Run("invalid secret", func(t *testing.T) {
		_, err := e.ProvisioningURI("acct", "EHR Portal", "!!!")
		require.ErrorIs(t, err, totpx.ErrInvalidSecret)
	})
}

func TestQRCodeDataURL(t *testing.T) {
	e := totpx.NewEngine()
	uri, err := e.ProvisioningURI("0012345678", "EHR Portal", testSecret)
	require.NoError(t, err)

	data, err := totpx.QRCodeDataURL(uri, 200)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(data, "data:image/png;base64,"))

	_, err = totpx.QRCodeDataURL("::not a uri", 200)
	require.Error(t, err)
}
