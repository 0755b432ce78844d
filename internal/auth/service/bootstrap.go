package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/idx"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

var ErrBootstrapAlready = errors.New("system already bootstrapped")

// BootstrapService creates the first administrator on an empty database.
type BootstrapService struct {
	Store store.Store
	Audit *AuditRecorder
	Admin domain.BootstrapAdmin
}

// BootstrapResult reports the administrator that was created. Password is
// only set when it was generated, so the operator can be told once.
type BootstrapResult struct {
	UserID            string
	GeneratedPassword string
}

// EnsureAdmin creates the configured administrator when no user exists yet
// and returns ErrBootstrapAlready otherwise.
func (s *BootstrapService) EnsureAdmin(ctx context.Context) (BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	a := NewAccount{
		FullName:     strings.TrimSpace(s.Admin.FullName),
		NationalCode: strings.TrimSpace(s.Admin.NationalCode),
		PhoneNumber:  strings.TrimSpace(s.Admin.PhoneNumber),
		Password:     s.Admin.Password,
		Role:         domain.RoleAdmin,
	}

	var result BootstrapResult
	if a.Password == "" {
		generated, err := cryptox.GeneratePassword()
		if err != nil {
			return BootstrapResult{}, fmt.Errorf("failed to generate admin password: %w", err)
		}
		a.Password = generated
		result.GeneratedPassword = generated
	}
	if err := a.validate(); err != nil {
		return BootstrapResult{}, err
	}

	hash, err := cryptox.HashPassword(a.Password)
	if err != nil {
		return BootstrapResult{}, fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := domain.User{
		ID:           idx.New().String(),
		NationalCode: a.NationalCode,
		PhoneNumber:  a.PhoneNumber,
		FullName:     a.FullName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.Users().CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if n > 0 {
			return ErrBootstrapAlready
		}

		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		return s.Audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       domain.AuditCreateUser,
			ResourceType: domain.ResourceUser,
			ResourceID:   admin.ID,
			Details:      map[string]any{"role": domain.RoleAdmin, "bootstrap": true},
		})
	})
	if err != nil {
		return BootstrapResult{}, err
	}

	l.Info("bootstrapped administrator", slog.String("admin_user_id", admin.ID))
	result.UserID = admin.ID
	return result, nil
}
