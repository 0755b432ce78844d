package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/idx"
)

// createAccount inserts a user and its audit record in one transaction.
func createAccount(
	ctx context.Context,
	st store.Store,
	audit *AuditRecorder,
	a NewAccount,
	createdBy *string,
	action domain.AuditAction,
	details map[string]any,
) (domain.User, error) {
	a.FullName = strings.TrimSpace(a.FullName)
	a.NationalCode = strings.TrimSpace(a.NationalCode)
	a.PhoneNumber = strings.TrimSpace(a.PhoneNumber)
	if err := a.validate(); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(a.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		NationalCode: a.NationalCode,
		PhoneNumber:  a.PhoneNumber,
		FullName:     a.FullName,
		PasswordHash: hash,
		Role:         a.Role,
		Status:       domain.UserStatusActive,
		Gender:       a.Gender,
		BirthDate:    a.BirthDate,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByNationalCode(ctx, user.NationalCode)
		switch {
		case err == nil:
			return ErrNationalCodeTaken
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("failed to check national code: %w", err)
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrNationalCodeTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		return audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       action,
			ResourceType: domain.ResourceUser,
			ResourceID:   user.ID,
			Details:      details,
		})
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// loadUser maps a missing row to ErrUserNotFound.
func loadUser(ctx context.Context, users store.Users, id string) (domain.User, error) {
	u, err := users.GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}
