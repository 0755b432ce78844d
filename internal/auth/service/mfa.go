package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/session"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/totpx"
)

const DefaultQRCodeSize = 256

// MFAService owns the TOTP lifecycle of an account: a pending secret is
// stored encrypted with totp_enabled false, and only a correct code flips it on.
type MFAService struct {
	Store  store.Store
	Audit  *AuditRecorder
	Cipher *cryptox.SecretCipher
	TOTP   *totpx.Engine
	Issuer string // shown by authenticator apps, e.g. "EHR Portal"

	// Replay, when set, also burns the step used to confirm enrollment.
	Replay session.ReplayGuard

	QRCodeSize int
}

// BeginEnrollment returns the provisioning data for userID, creating and
// storing a pending secret when there is none. Calling it again before
// confirming returns the same secret.
func (s *MFAService) BeginEnrollment(ctx context.Context, userID string) (domain.TOTPEnrollment, error) {
	l := slogx.FromContext(ctx)

	user, err := loadUser(ctx, s.Store.Users(), userID)
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}
	if user.TOTPEnabled {
		return domain.TOTPEnrollment{}, ErrTOTPAlreadyEnabled
	}

	var secret string
	if user.TOTPSecret != nil && *user.TOTPSecret != "" {
		secret, err = s.Cipher.Decrypt(*user.TOTPSecret)
		if err != nil {
			l.Error("failed to decrypt pending totp secret", slog.Any("error", err))
			return domain.TOTPEnrollment{}, fmt.Errorf("failed to open pending secret: %w", err)
		}
	} else {
		secret, err = s.TOTP.GenerateSecret()
		if err != nil {
			return domain.TOTPEnrollment{}, err
		}

		sealed, err := s.Cipher.Encrypt(secret)
		if err != nil {
			return domain.TOTPEnrollment{}, fmt.Errorf("failed to encrypt totp secret: %w", err)
		}
		if err := s.Store.Users().UpdateTOTP(ctx, user.ID, &sealed, false); err != nil {
			return domain.TOTPEnrollment{}, fmt.Errorf("failed to store pending secret: %w", err)
		}
		l.Info("stored pending totp secret", slog.String("user_id", user.ID))
	}

	uri, err := s.TOTP.ProvisioningURI(user.NationalCode, s.Issuer, secret)
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}

	size := s.QRCodeSize
	if size <= 0 {
		size = DefaultQRCodeSize
	}
	qr, err := totpx.QRCodeDataURL(uri, size)
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}

	return domain.TOTPEnrollment{
		Secret:  secret,
		URI:     uri,
		QRCode:  qr,
		Issuer:  s.Issuer,
		Account: user.NationalCode,
	}, nil
}

// ConfirmEnrollment enables two factors once code matches the pending
// secret. A wrong code leaves the enrollment pending. The returned principal
// carries the new flag.
func (s *MFAService) ConfirmEnrollment(ctx context.Context, userID, code string) (domain.Principal, error) {
	var principal domain.Principal

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := loadUser(ctx, tx.Users(), userID)
		if err != nil {
			return err
		}
		if user.TOTPEnabled {
			return ErrTOTPAlreadyEnabled
		}
		if user.TOTPSecret == nil || *user.TOTPSecret == "" {
			return ErrTOTPNotInitiated
		}

		secret, err := s.Cipher.Decrypt(*user.TOTPSecret)
		if err != nil {
			return fmt.Errorf("failed to open pending secret: %w", err)
		}

		step, ok := s.TOTP.MatchStep(code, secret, s.TOTP.Now())
		if !ok {
			return ErrInvalidTOTPCode
		}
		if s.Replay != nil {
			if fresh, err := s.Replay.Use(ctx, user.ID, step); err != nil {
				return err
			} else if !fresh {
				return ErrInvalidTOTPCode
			}
		}

		if err := tx.Users().UpdateTOTP(ctx, user.ID, user.TOTPSecret, true); err != nil {
			return fmt.Errorf("failed to enable totp: %w", err)
		}

		user.TOTPEnabled = true
		principal = user.Principal()

		return s.Audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       domain.AuditEnable2FA,
			ResourceType: domain.ResourceUser,
			ResourceID:   user.ID,
		})
	})
	if err != nil {
		return domain.Principal{}, err
	}

	slogx.FromContext(ctx).Info("two-factor enabled", slog.String("user_id", userID))
	return principal, nil
}

// ResetTOTP clears the secret and the enabled flag after checking the
// account password.
func (s *MFAService) ResetTOTP(ctx context.Context, userID, password string) (domain.Principal, error) {
	user, err := loadUser(ctx, s.Store.Users(), userID)
	if err != nil {
		return domain.Principal{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash is unreadable", slog.Any("error", err))
		}
		return domain.Principal{}, ErrInvalidPassword
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateTOTP(ctx, user.ID, nil, false); err != nil {
			return fmt.Errorf("failed to reset totp: %w", err)
		}
		return s.Audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       domain.AuditReset2FA,
			ResourceType: domain.ResourceUser,
			ResourceID:   user.ID,
			Details:      map[string]any{"was_enabled": user.TOTPEnabled},
		})
	})
	if err != nil {
		return domain.Principal{}, err
	}

	user.TOTPEnabled = false
	slogx.FromContext(ctx).Info("two-factor reset", slog.String("user_id", user.ID))
	return user.Principal(), nil
}

// LegacySecretCount reports how many stored secrets are still plaintext.
func (s *MFAService) LegacySecretCount(ctx context.Context) (int, error) {
	users, err := s.Store.Users().ListUsersWithTOTPSecret(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list totp secrets: %w", err)
	}

	n := 0
	for _, u := range users {
		if !cryptox.IsEnvelope(*u.TOTPSecret) {
			n++
		}
	}
	return n, nil
}

// EncryptLegacySecrets seals every plaintext secret in place, one
// transaction and one audit record per account. It is safe to run again.
func (s *MFAService) EncryptLegacySecrets(ctx context.Context) (int, error) {
	l := slogx.FromContext(ctx)

	users, err := s.Store.Users().ListUsersWithTOTPSecret(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list totp secrets: %w", err)
	}

	encrypted := 0
	for _, u := range users {
		plain := *u.TOTPSecret
		if cryptox.IsEnvelope(plain) {
			continue
		}

		sealed, err := s.Cipher.Encrypt(plain)
		if err != nil {
			return encrypted, fmt.Errorf("failed to encrypt secret of %s: %w", u.ID, err)
		}

		changed := false
		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			current, err := loadUser(ctx, tx.Users(), u.ID)
			if err != nil {
				return err
			}
			// reset or re-enrolled since we listed it
			if current.TOTPSecret == nil || *current.TOTPSecret != plain {
				return nil
			}

			if err := tx.Users().UpdateTOTP(ctx, u.ID, &sealed, current.TOTPEnabled); err != nil {
				return fmt.Errorf("failed to store sealed secret: %w", err)
			}
			changed = true

			return s.Audit.Record(ctx, tx.AuditLogs(), AuditEntry{
				Action:       domain.AuditEncryptTOTPSecret,
				ResourceType: domain.ResourceUser,
				ResourceID:   u.ID,
			})
		})
		if err != nil {
			return encrypted, err
		}
		if changed {
			encrypted++
			l.Info("encrypted legacy totp secret", slog.String("user_id", u.ID))
		}
	}

	return encrypted, nil
}
