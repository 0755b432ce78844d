package service

import (
	"context"
	"testing"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/session"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const totpSecret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

type loginFixture struct {
	svc       *LoginService
	plain     domain.User
	twoFactor domain.User
	legacy    domain.User
	inactive  domain.User
	noSecret  domain.User
	wrongKey  domain.User
	imported  domain.User
	bcrypt    domain.User
	tampered  domain.User
}

func ptrTo(s string) *string { return &s }

func newLoginFixture(t *testing.T) loginFixture {
	t.Helper()

	st := newTestStore(t)
	cipher := newTestCipher(t, "login-test-key")
	sealed, err := cipher.Encrypt(totpSecret)
	require.NoError(t, err)

	foreign, err := newTestCipher(t, "some-other-key").Encrypt(totpSecret)
	require.NoError(t, err)
	legacy := totpSecret
	ivSealed := ivEnvelope(t, "login-test-key", totpSecret)
	ivTampered := []byte(ivEnvelope(t, "login-test-key", totpSecret))
	if ivTampered[40] == 'f' { // a tag digit
		ivTampered[40] = 'e'
	} else {
		ivTampered[40] = 'f'
	}

	return loginFixture{
		svc: &LoginService{
			Store:  st,
			Cipher: cipher,
			TOTP:   newTestEngine(),
		},
		plain:     seedUser(t, st, withRole(domain.RoleAdmin)),
		twoFactor: seedUser(t, st, withTOTP(&sealed, true)),
		legacy:    seedUser(t, st, withRole(domain.RoleClerk), withTOTP(&legacy, true)),
		inactive:  seedUser(t, st, withStatus(domain.UserStatusInactive)),
		noSecret:  seedUser(t, st, withTOTP(nil, true)),
		wrongKey:  seedUser(t, st, withTOTP(&foreign, true)),
		imported:  seedUser(t, st, withTOTP(&ivSealed, true)),
		bcrypt:    seedUser(t, st, withBcryptPassword(t)),
		tampered:  seedUser(t, st, withTOTP(ptrTo(string(ivTampered)), true)),
	}
}

func TestAuthorize(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()
	now := codeAt(t, totpSecret, fixedNow)

	tests := []struct {
		name    string
		req     LoginRequest
		failure LoginFailure
		user    *domain.User
		usedOTP bool
	}{
		{"password only by phone", LoginRequest{Identifier: f.plain.PhoneNumber, Password: testPassword}, "", &f.plain, false},
		{"password only by national code", LoginRequest{Identifier: f.plain.NationalCode, Password: testPassword}, "", &f.plain, false},
		{"identifier is trimmed", LoginRequest{Identifier: "  " + f.plain.NationalCode + " ", Password: testPassword}, "", &f.plain, false},
		{"wrong password", LoginRequest{Identifier: f.plain.PhoneNumber, Password: "nope"}, FailureInvalidCredentials, nil, false},
		{"unknown identifier", LoginRequest{Identifier: "0999999999", Password: testPassword}, FailureInvalidCredentials, nil, false},
		{"empty identifier", LoginRequest{Password: testPassword}, FailureInvalidCredentials, nil, false},
		{"inactive account", LoginRequest{Identifier: f.inactive.PhoneNumber, Password: testPassword}, FailureInvalidCredentials, nil, false},
		{"totp missing", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: testPassword}, FailureTOTPRequired, nil, false},
		{"totp undefined placeholder", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: testPassword, TOTPCode: "undefined"}, FailureTOTPRequired, nil, false},
		{"totp null placeholder", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: testPassword, TOTPCode: " null "}, FailureTOTPRequired, nil, false},
		{"totp wrong password wins", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: "nope", TOTPCode: now}, FailureInvalidCredentials, nil, false},
		{"totp wrong code", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: testPassword, TOTPCode: "000000"}, FailureInvalidTOTP, nil, false},
		{"totp stale code", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: testPassword, TOTPCode: codeAt(t, totpSecret, fixedNow.Add(-90*time.Second))}, FailureInvalidTOTP, nil, false},
		{"totp current code", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: testPassword, TOTPCode: now}, "", &f.twoFactor, true},
		{"totp previous step", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: testPassword, TOTPCode: codeAt(t, totpSecret, fixedNow.Add(-30*time.Second))}, "", &f.twoFactor, true},
		{"totp next step", LoginRequest{Identifier: f.twoFactor.PhoneNumber, Password: testPassword, TOTPCode: codeAt(t, totpSecret, fixedNow.Add(30*time.Second))}, "", &f.twoFactor, true},
		{"legacy plaintext secret", LoginRequest{Identifier: f.legacy.PhoneNumber, Password: testPassword, TOTPCode: now}, "", &f.legacy, true},
		{"enabled without secret", LoginRequest{Identifier: f.noSecret.PhoneNumber, Password: testPassword, TOTPCode: now}, FailureTOTPSetup, nil, false},
		{"secret in iv layout", LoginRequest{Identifier: f.imported.PhoneNumber, Password: testPassword, TOTPCode: now}, "", &f.imported, true},
		{"tampered iv layout secret", LoginRequest{Identifier: f.tampered.PhoneNumber, Password: testPassword, TOTPCode: now}, FailureInvalidCredentials, nil, false},
		{"imported bcrypt password", LoginRequest{Identifier: f.bcrypt.PhoneNumber, Password: testPassword}, "", &f.bcrypt, false},
		{"imported bcrypt wrong password", LoginRequest{Identifier: f.bcrypt.PhoneNumber, Password: "nope"}, FailureInvalidCredentials, nil, false},
		{"secret sealed with another key", LoginRequest{Identifier: f.wrongKey.PhoneNumber, Password: testPassword, TOTPCode: now}, FailureInvalidCredentials, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.svc.Authorize(ctx, tt.req)
			require.Equal(t, tt.failure, res.Failure)
			require.Equal(t, tt.failure == "", res.Authenticated())
			require.Equal(t, tt.failure == FailureTOTPRequired, res.NeedsTOTP())
			require.Equal(t, tt.usedOTP, res.UsedTOTP)

			if tt.user == nil {
				require.Equal(t, domain.Principal{}, res.Principal)
				return
			}
			require.Equal(t, tt.user.Principal(), res.Principal)
		})
	}
}

func TestAuthorize_PrincipalShape(t *testing.T) {
	f := newLoginFixture(t)

	res := f.svc.Authorize(context.Background(), LoginRequest{Identifier: f.plain.PhoneNumber, Password: testPassword})
	require.True(t, res.Authenticated())
	require.Equal(t, domain.Principal{
		ID:          f.plain.ID,
		Name:        f.plain.FullName,
		Role:        domain.RoleAdmin,
		TOTPEnabled: false,
	}, res.Principal)
	require.Equal(t, []string{"pwd"}, AMRFor(res))
}

// hashKind names the format a compared hash belongs to.
func hashKind(h string) string {
	if cryptox.IsBcryptHash(h) {
		return "bcrypt"
	}
	return "argon2id"
}

func TestAuthorize_RejectionsCompareEveryFormat(t *testing.T) {
	f := newLoginFixture(t)

	var compared []string
	f.svc.verify = func(password, hash string) error {
		compared = append(compared, hashKind(hash))
		return cryptox.VerifyPassword(password, hash)
	}

	tests := []struct {
		name       string
		identifier string
	}{
		{"unknown identifier", "0999999999"},
		{"empty identifier", ""},
		{"argon2id account", f.plain.PhoneNumber},
		{"bcrypt account", f.bcrypt.PhoneNumber},
		{"inactive account", f.inactive.PhoneNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compared = nil
			res := f.svc.Authorize(context.Background(), LoginRequest{Identifier: tt.identifier, Password: "whatever"})
			require.Equal(t, FailureInvalidCredentials, res.Failure)
			require.ElementsMatch(t, []string{"argon2id", "bcrypt"}, compared)
		})
	}
}

func TestAuthorize_FlagsOutdatedHash(t *testing.T) {
	f := newLoginFixture(t)

	res := f.svc.Authorize(context.Background(), LoginRequest{Identifier: f.bcrypt.PhoneNumber, Password: testPassword})
	require.True(t, res.Authenticated())
	require.True(t, res.NeedsRehash)

	res = f.svc.Authorize(context.Background(), LoginRequest{Identifier: f.plain.PhoneNumber, Password: testPassword})
	require.True(t, res.Authenticated())
	require.False(t, res.NeedsRehash)
}

func TestAuthorize_ReplayGuard(t *testing.T) {
	f := newLoginFixture(t)
	mem := session.NewMemoryStore()
	mem.Now = func() time.Time { return fixedNow }
	f.svc.Replay = mem

	req := LoginRequest{
		Identifier: f.twoFactor.PhoneNumber,
		Password:   testPassword,
		TOTPCode:   codeAt(t, totpSecret, fixedNow),
	}

	first := f.svc.Authorize(context.Background(), req)
	require.True(t, first.Authenticated())
	require.Equal(t, []string{"pwd", "otp", "mfa"}, AMRFor(first))

	second := f.svc.Authorize(context.Background(), req)
	require.Equal(t, FailureInvalidTOTP, second.Failure)

	// an older step is refused once a newer one was used
	req.TOTPCode = codeAt(t, totpSecret, fixedNow.Add(-30*time.Second))
	require.Equal(t, FailureInvalidTOTP, f.svc.Authorize(context.Background(), req).Failure)

	req.TOTPCode = codeAt(t, totpSecret, fixedNow.Add(30*time.Second))
	require.True(t, f.svc.Authorize(context.Background(), req).Authenticated())
}

func TestAuthorize_HasNoSideEffects(t *testing.T) {
	f := newLoginFixture(t)

	res := f.svc.Authorize(context.Background(), LoginRequest{Identifier: f.plain.PhoneNumber, Password: testPassword})
	require.True(t, res.Authenticated())
	require.Empty(t, auditActions(t, f.svc.Store))
}
