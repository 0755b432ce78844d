package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/session"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/totpx"
)

// LoginFailure is the closed set of reasons a login is rejected. The values
// are part of the API.
type LoginFailure string

const (
	FailureInvalidCredentials LoginFailure = "INVALID_CREDENTIALS"
	FailureTOTPRequired       LoginFailure = "TOTP_REQUIRED"
	FailureInvalidTOTP        LoginFailure = "INVALID_TOTP"
	FailureTOTPSetup          LoginFailure = "TOTP_SETUP_ERROR"
)

type LoginRequest struct {
	Identifier string // phone number or national code
	Password   string
	TOTPCode   string
}

// LoginResult is either an authenticated principal or a failure, never both.
type LoginResult struct {
	Principal domain.Principal
	Failure   LoginFailure

	// UsedTOTP is set when the second factor was verified.
	UsedTOTP bool

	// NeedsRehash is set when the verified password is stored in an older
	// format. Callers may upgrade it with ProfileService.UpgradePasswordHash.
	NeedsRehash bool
}

func (r LoginResult) Authenticated() bool { return r.Failure == "" }

// NeedsTOTP reports whether the password was right and a code must follow.
func (r LoginResult) NeedsTOTP() bool { return r.Failure == FailureTOTPRequired }

func rejected(f LoginFailure) LoginResult { return LoginResult{Failure: f} }

// LoginService checks a password and, for accounts with two factors, a TOTP
// code. It has no side effects beyond the optional replay guard.
type LoginService struct {
	Store  store.Store
	Cipher *cryptox.SecretCipher
	TOTP   *totpx.Engine

	// Replay refuses a code whose time step was already used. Optional.
	Replay session.ReplayGuard

	// verify is swapped in tests to observe hash comparisons.
	verify func(password, hash string) error
}

var (
	timingHashOnce sync.Once
	timingArgon2   string
	timingBcrypt   string
)

// timingHashes returns one placeholder hash per supported format. Every
// password check compares against both formats once.
func timingHashes() (argon2id, bcrypt string) {
	timingHashOnce.Do(func() {
		var err error
		if timingArgon2, err = cryptox.HashPassword("timing-equalisation-placeholder"); err != nil {
			slog.Error("failed to compute timing hash", slog.Any("error", err))
		}
		if timingBcrypt, err = cryptox.HashBcryptPassword("timing-equalisation-placeholder"); err != nil {
			slog.Error("failed to compute timing hash", slog.Any("error", err))
		}
	})
	return timingArgon2, timingBcrypt
}

func (s *LoginService) verifyPassword(password, hash string) error {
	if s.verify != nil {
		return s.verify(password, hash)
	}
	return cryptox.VerifyPassword(password, hash)
}

// checkPassword verifies password against hash and pays for the other format
// with a placeholder. An empty hash runs both placeholders and never matches.
func (s *LoginService) checkPassword(password, hash string) error {
	argon2Dummy, bcryptDummy := timingHashes()

	if hash == "" {
		_ = s.verifyPassword(password, argon2Dummy)
		_ = s.verifyPassword(password, bcryptDummy)
		return cryptox.ErrPasswordMismatch
	}

	err := s.verifyPassword(password, hash)
	if cryptox.IsBcryptHash(hash) {
		_ = s.verifyPassword(password, argon2Dummy)
	} else {
		_ = s.verifyPassword(password, bcryptDummy)
	}
	return err
}

// Authorize runs the login state machine. Infrastructure faults are logged
// and reported as INVALID_CREDENTIALS so callers learn nothing extra.
func (s *LoginService) Authorize(ctx context.Context, req LoginRequest) LoginResult {
	l := slogx.FromContext(ctx)
	identifier := strings.TrimSpace(req.Identifier)

	var user domain.User
	var err error
	if identifier == "" {
		err = store.ErrNotFound
	} else {
		user, err = s.Store.Users().GetUserByIdentifier(ctx, identifier)
	}
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("failed to look up user for login", slog.Any("error", err))
		}
		_ = s.checkPassword(req.Password, "")
		l.Info("login rejected", slog.String("reason", "unknown_identifier"))
		return rejected(FailureInvalidCredentials)
	}

	l = l.With(slog.String("user_id", user.ID))

	if err := s.checkPassword(req.Password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash is unreadable", slog.Any("error", err))
		}
		l.Info("login rejected", slog.String("reason", "password_mismatch"))
		return rejected(FailureInvalidCredentials)
	}

	if user.Status != domain.UserStatusActive {
		l.Info("login rejected", slog.String("reason", "inactive_account"))
		return rejected(FailureInvalidCredentials)
	}

	rehash := cryptox.NeedsRehash(user.PasswordHash)

	if !user.TOTPEnabled {
		return LoginResult{Principal: user.Principal(), NeedsRehash: rehash}
	}

	if user.TOTPSecret == nil || *user.TOTPSecret == "" {
		l.Error("two-factor enabled without a stored secret")
		return rejected(FailureTOTPSetup)
	}

	code := strings.TrimSpace(req.TOTPCode)
	if isMissingCode(code) {
		l.Debug("login needs totp code")
		return rejected(FailureTOTPRequired)
	}

	secret, err := s.Cipher.Decrypt(*user.TOTPSecret)
	if err != nil {
		l.Error("failed to decrypt totp secret", slog.Any("error", err))
		return rejected(FailureInvalidCredentials)
	}

	step, ok := s.TOTP.MatchStep(code, secret, s.TOTP.Now())
	if !ok {
		l.Info("login rejected", slog.String("reason", "totp_mismatch"))
		return rejected(FailureInvalidTOTP)
	}

	if s.Replay != nil {
		fresh, err := s.Replay.Use(ctx, user.ID, step)
		if err != nil {
			l.Error("failed to check totp replay", slog.Any("error", err))
			return rejected(FailureInvalidCredentials)
		}
		if !fresh {
			l.Warn("login rejected", slog.String("reason", "totp_replayed"))
			return rejected(FailureInvalidTOTP)
		}
	}

	return LoginResult{Principal: user.Principal(), UsedTOTP: true, NeedsRehash: rehash}
}

// isMissingCode treats the placeholders some form encoders send as absent.
func isMissingCode(code string) bool {
	switch code {
	case "", "undefined", "null":
		return true
	}
	return false
}
