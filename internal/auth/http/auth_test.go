package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/authsdk"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
)

func TestLogin_Outcomes(t *testing.T) {
	srv := newTestServer(t)

	admin := srv.seed(t, domain.RoleAdmin)
	doctor := srv.seedWithTOTP(t, domain.RoleDoctor)
	disabled := srv.seed(t, domain.RoleClerk, inactive())
	broken := srv.seed(t, domain.RoleClerk, func(u *domain.User) { u.TOTPEnabled = true })

	tests := []struct {
		name       string
		identifier string
		password   string
		code       string
		status     int
		errCode    string
	}{
		{"unknown identifier", "09999999999", testPassword, "", http.StatusUnauthorized, authsdk.ErrorCodeLoginInvalidCredentials},
		{"wrong password", admin.PhoneNumber, "not-the-password", "", http.StatusUnauthorized, authsdk.ErrorCodeLoginInvalidCredentials},
		{"inactive account", disabled.PhoneNumber, testPassword, "", http.StatusUnauthorized, authsdk.ErrorCodeLoginInvalidCredentials},
		{"totp missing", doctor.PhoneNumber, testPassword, "", http.StatusUnauthorized, authsdk.ErrorCodeLoginTOTPRequired},
		{"totp placeholder", doctor.PhoneNumber, testPassword, "undefined", http.StatusUnauthorized, authsdk.ErrorCodeLoginTOTPRequired},
		{"totp wrong", doctor.PhoneNumber, testPassword, "000000", http.StatusUnauthorized, authsdk.ErrorCodeLoginInvalidTOTP},
		{"totp wrong before password", doctor.PhoneNumber, "not-the-password", "000000", http.StatusUnauthorized, authsdk.ErrorCodeLoginInvalidCredentials},
		{"enabled without secret", broken.PhoneNumber, testPassword, "", http.StatusInternalServerError, authsdk.ErrorCodeLoginTOTPSetup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.Client.Login(t.Context(), authsdk.LoginRequest{
				Identifier: tt.identifier,
				Password:   tt.password,
				TOTPCode:   tt.code,
			})
			requireAPIError(t, err, tt.status, tt.errCode)
		})
	}
}

func TestLogin_Succeeds(t *testing.T) {
	srv := newTestServer(t)

	t.Run("password only", func(t *testing.T) {
		admin := srv.seed(t, domain.RoleAdmin)

		resp, err := srv.Client.Login(t.Context(), authsdk.LoginRequest{
			Identifier: admin.NationalCode,
			Password:   testPassword,
		})
		require.NoError(t, err)
		require.Equal(t, "Bearer", resp.TokenType)
		require.NotEmpty(t, resp.AccessToken)
		require.Positive(t, resp.ExpiresIn)
		require.Equal(t, authsdk.Principal{
			ID:   admin.ID,
			Name: admin.FullName,
			Role: "admin",
		}, resp.Principal)
	})

	t.Run("with totp", func(t *testing.T) {
		doctor := srv.seedWithTOTP(t, domain.RoleDoctor)

		sess := srv.login(t, doctor)
		require.True(t, sess.Principal().TOTPEnabled)

		claims := decodeClaims(t, sess.AccessToken())
		require.ElementsMatch(t, []string{jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA}, claims.AMR)
	})

	t.Run("totp code cannot be replayed", func(t *testing.T) {
		clerk := srv.seedWithTOTP(t, domain.RoleClerk)
		now := time.Now()
		srv.loginAt(t, clerk, now)

		_, err := srv.Client.Authenticate(t.Context(), clerk.PhoneNumber, testPassword, totpCode(t, clerk.Secret, now))
		requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeLoginInvalidTOTP)
	})

	t.Run("imported bcrypt password is upgraded", func(t *testing.T) {
		admin := srv.seed(t, domain.RoleAdmin, bcryptPassword(t))

		srv.login(t, admin)

		stored, err := srv.Store.Users().GetUserByID(t.Context(), admin.ID)
		require.NoError(t, err)
		require.False(t, cryptox.IsBcryptHash(stored.PasswordHash))
		require.NoError(t, cryptox.VerifyPassword(testPassword, stored.PasswordHash))

		srv.login(t, admin)
	})

	t.Run("staff without totp may log in to enroll", func(t *testing.T) {
		clerk := srv.seed(t, domain.RoleClerk)

		sess := srv.login(t, clerk)
		require.False(t, sess.Principal().TOTPEnabled)
	})
}

func TestLogin_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/v1/auth/login", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestSessionAndLogout(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.seed(t, domain.RoleAdmin)
	sess := srv.login(t, admin)

	p, err := sess.GetSession(t.Context())
	require.NoError(t, err)
	require.Equal(t, admin.ID, p.ID)
	require.Equal(t, "admin", p.Role)

	require.NoError(t, sess.Logout(t.Context()))

	_, err = sess.GetSession(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	// A revoked token is treated as anonymous where a session is optional.
	d, err := sess.CheckAccess(t.Context(), "/admin/users")
	require.NoError(t, err)
	require.Equal(t, "/login", d.Redirect)

	logs, err := srv.Store.AuditLogs().ListAuditLogs(t.Context(), auditFilter(domain.AuditUserLogout))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, admin.ID, *logs[0].ActorUserID)
}

func TestSession_RejectsBadTokens(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"foreign signer", foreignToken(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.Client.NewSessionFromToken(tt.token).GetSession(t.Context())
			requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
		})
	}
}

func TestAccessDecisions(t *testing.T) {
	srv := newTestServer(t)

	admin := srv.login(t, srv.seed(t, domain.RoleAdmin))
	enrolling := srv.login(t, srv.seed(t, domain.RoleDoctor))
	doctor := srv.login(t, srv.seedWithTOTP(t, domain.RoleDoctor))

	tests := []struct {
		name     string
		sess     *authsdk.Session
		path     string
		redirect string
	}{
		{"anonymous on protected page", nil, "/dashboard", "/login"},
		{"anonymous on login", nil, "/login", ""},
		{"admin on root", admin, "/", "/admin/users"},
		{"admin on admin page", admin, "/admin/audit-logs", ""},
		{"staff without totp is sent to enrollment", enrolling, "/dashboard", "/setup-2fa"},
		{"staff without totp may enroll", enrolling, "/setup-2fa", ""},
		{"enrolled staff leaves enrollment", doctor, "/setup-2fa", "/dashboard"},
		{"doctor outside admin", doctor, "/admin/users", "/dashboard"},
		{"doctor after login", doctor, "/login", "/dashboard"},
		{"doctor on own page", doctor, "/patients/42", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d *authsdk.AccessDecision
			var err error
			if tt.sess == nil {
				d, err = srv.Client.CheckAccess(t.Context(), tt.path)
			} else {
				d, err = tt.sess.CheckAccess(t.Context(), tt.path)
			}
			require.NoError(t, err)
			require.Equal(t, tt.redirect, d.Redirect)
			require.Equal(t, tt.redirect == "", d.Allowed)
		})
	}

	t.Run("path is required", func(t *testing.T) {
		_, err := srv.Client.CheckAccess(t.Context(), "")
		requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
	})
}
