package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

// StaffUpdate is a doctor's change to one of their clerks. A nil Password
// keeps the current one.
type StaffUpdate struct {
	Profile  domain.ProfileUpdate
	Password *string
}

// StaffService lets a doctor manage the clerks they created. Accounts created
// by anyone else look like they do not exist.
type StaffService struct {
	Store store.Store
	Audit *AuditRecorder
}

func (s *StaffService) ListStaff(ctx context.Context) ([]domain.User, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.Store.Users().ListUsersByCreator(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return users, nil
}

func (s *StaffService) CreateStaff(ctx context.Context, a NewAccount) (domain.User, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if a.Role == "" {
		a.Role = domain.RoleClerk
	}
	if a.Role != domain.RoleClerk {
		return domain.User{}, invalid("staff role must be clerk")
	}

	user, err := createAccount(ctx, s.Store, s.Audit, a, &actor.ID, domain.AuditCreateStaff, map[string]any{
		"role":          a.Role,
		"national_code": a.NationalCode,
		"created_by":    actor.ID,
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("staff created", slog.String("user_id", user.ID))
	return user, nil
}

func (s *StaffService) UpdateStaff(ctx context.Context, id string, u StaffUpdate) (domain.User, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if err := validateProfileUpdate(u.Profile); err != nil {
		return domain.User{}, err
	}
	if u.Profile.Empty() && u.Password == nil {
		return domain.User{}, invalid("nothing to update")
	}

	var hash string
	if u.Password != nil {
		if err := validatePassword(*u.Password); err != nil {
			return domain.User{}, err
		}
		if hash, err = cryptox.HashPassword(*u.Password); err != nil {
			return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	var updated domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := loadUser(ctx, tx.Users(), id)
		if err != nil {
			return err
		}
		if !createdBy(user, actor.ID) {
			return ErrUserNotFound
		}

		changed := u.Profile.ChangedFields()
		if !u.Profile.Empty() {
			if err := tx.Users().UpdateUserProfile(ctx, id, u.Profile); err != nil {
				return fmt.Errorf("failed to update staff: %w", err)
			}
		}
		if hash != "" {
			if err := tx.Users().UpdatePasswordHash(ctx, id, hash); err != nil {
				return fmt.Errorf("failed to update password: %w", err)
			}
			changed = append(changed, "password")
		}

		if updated, err = loadUser(ctx, tx.Users(), id); err != nil {
			return err
		}

		return s.Audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       domain.AuditUpdateStaff,
			ResourceType: domain.ResourceUser,
			ResourceID:   id,
			Details:      map[string]any{"changed_fields": changed},
		})
	})
	if err != nil {
		return domain.User{}, err
	}

	return updated, nil
}

func (s *StaffService) ToggleStaffStatus(ctx context.Context, id string) (domain.UserStatus, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return "", err
	}
	return toggleStatus(ctx, s.Store, s.Audit, id, domain.AuditToggleStaffStatus, &actor.ID)
}
