package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

type ProfileService struct {
	Store store.Store
	Audit *AuditRecorder
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	return loadUser(ctx, s.Store.Users(), userID)
}

// UpdateProfile changes the caller's own profile fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) (domain.User, error) {
	if p.Empty() {
		return domain.User{}, invalid("nothing to update")
	}
	if err := validateProfileUpdate(p); err != nil {
		return domain.User{}, err
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := loadUser(ctx, tx.Users(), userID); err != nil {
			return err
		}
		if err := tx.Users().UpdateUserProfile(ctx, userID, p); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		var err error
		if updated, err = loadUser(ctx, tx.Users(), userID); err != nil {
			return err
		}

		return s.Audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       domain.AuditUpdateProfile,
			ResourceType: domain.ResourceUser,
			ResourceID:   userID,
			Details:      map[string]any{"changed_fields": p.ChangedFields()},
		})
	})
	if err != nil {
		return domain.User{}, err
	}
	return updated, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *ProfileService) ChangePassword(ctx context.Context, userID, current, next string) error {
	l := slogx.FromContext(ctx)

	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := loadUser(ctx, s.Store.Users(), userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash is unreadable", slog.Any("error", err))
		}
		return ErrInvalidPassword
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return s.Audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       domain.AuditChangePassword,
			ResourceType: domain.ResourceUser,
			ResourceID:   userID,
		})
	})
	if err != nil {
		return err
	}

	l.Info("password changed", slog.String("user_id", userID))
	return nil
}

// UpgradePasswordHash re-hashes a password that was just verified at login
// and stored in an older format. It is not audited, the password itself does
// not change.
func (s *ProfileService) UpgradePasswordHash(ctx context.Context, userID, password string) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slogx.FromContext(ctx).Info("password hash upgraded", slog.String("user_id", userID))
	return nil
}
