package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
)

// TestDoctorEnrollmentAndLogin walks a new doctor from first login through
// TOTP enrollment to a two-factor login.
func TestDoctorEnrollmentAndLogin(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)

	const password = "doctor-pass-1"
	doctor := createDoctor(t, loginAdmin(t, client), "0075834129", "09351234567", password)

	sess, err := client.Authenticate(t.Context(), doctor.PhoneNumber, password, "")
	require.NoError(t, err)

	decision, err := sess.CheckAccess(t.Context(), "/dashboard")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, "/setup-2fa", decision.Redirect)

	secret, sess := enrollTOTP(t, client, sess)

	decision, err = sess.CheckAccess(t.Context(), "/dashboard")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	_, err = client.Login(t.Context(), authsdk.LoginRequest{Identifier: doctor.NationalCode, Password: password})
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeLoginTOTPRequired)

	_, err = client.Login(t.Context(), authsdk.LoginRequest{Identifier: doctor.NationalCode, Password: password, TOTPCode: "000000"})
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeLoginInvalidTOTP)

	// the enrollment code is spent, use the next step
	code, err := totp.GenerateCode(secret, time.Now().Add(30*time.Second))
	require.NoError(t, err)

	tokenResp, err := client.Login(t.Context(), authsdk.LoginRequest{Identifier: doctor.NationalCode, Password: password, TOTPCode: code})
	require.NoError(t, err)
	require.True(t, tokenResp.Principal.TOTPEnabled)
}

// TestRedisSessionStore runs logout revocation against the redis backend.
func TestRedisSessionStore(t *testing.T) {
	networkName, redisURL := setupRedis(t)
	baseURL := setupAuthContainer(t, withNetwork(networkName), withEnv("REDIS_URL", redisURL))
	client := authsdk.NewSDKClient(baseURL)

	ready, err := client.GetReadiness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	admin := loginAdmin(t, client)
	require.NoError(t, admin.Logout(t.Context()))

	_, err = admin.GetProfile(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
}
