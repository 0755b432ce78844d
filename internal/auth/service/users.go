package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

// UserUpdate is an administrator's change to an account.
type UserUpdate struct {
	Profile domain.ProfileUpdate
	Role    *domain.Role
}

// UserAdminService is the administrator's account management.
type UserAdminService struct {
	Store store.Store
	Audit *AuditRecorder
}

// ListUsers returns every account, newest first.
func (s *UserAdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser provisions a doctor or clerk account.
func (s *UserAdminService) CreateUser(ctx context.Context, a NewAccount) (domain.User, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !a.Role.IsStaff() {
		return domain.User{}, invalid("role must be doctor or clerk")
	}

	user, err := createAccount(ctx, s.Store, s.Audit, a, &actor.ID, domain.AuditCreateUser, map[string]any{
		"role":          a.Role,
		"national_code": a.NationalCode,
	})
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)
	return user, nil
}

// UpdateUser applies u to the account id.
func (s *UserAdminService) UpdateUser(ctx context.Context, id string, u UserUpdate) (domain.User, error) {
	if _, err := requireActor(ctx); err != nil {
		return domain.User{}, err
	}
	if err := validateProfileUpdate(u.Profile); err != nil {
		return domain.User{}, err
	}
	if u.Role != nil {
		role, ok := domain.ParseRole(string(*u.Role))
		if !ok {
			return domain.User{}, invalid("unknown role %q", *u.Role)
		}
		if !role.IsStaff() {
			return domain.User{}, invalid("role can only be changed to doctor or clerk")
		}
	}
	if u.Profile.Empty() && u.Role == nil {
		return domain.User{}, invalid("nothing to update")
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := loadUser(ctx, tx.Users(), id)
		if err != nil {
			return err
		}

		changed := u.Profile.ChangedFields()
		if !u.Profile.Empty() {
			if err := tx.Users().UpdateUserProfile(ctx, id, u.Profile); err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		details := map[string]any{}
		if u.Role != nil && *u.Role != user.Role {
			if err := tx.Users().UpdateRole(ctx, id, *u.Role); err != nil {
				return fmt.Errorf("failed to update role: %w", err)
			}
			changed = append(changed, "role")
			details["old_role"] = user.Role
			details["new_role"] = *u.Role
		}
		details["changed_fields"] = changed

		if updated, err = loadUser(ctx, tx.Users(), id); err != nil {
			return err
		}

		return s.Audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       domain.AuditUpdateUser,
			ResourceType: domain.ResourceUser,
			ResourceID:   id,
			Details:      details,
		})
	})
	if err != nil {
		return domain.User{}, err
	}

	return updated, nil
}

// ToggleUserStatus flips the account between active and inactive and
// returns the new status. Administrators cannot lock themselves out.
func (s *UserAdminService) ToggleUserStatus(ctx context.Context, id string) (domain.UserStatus, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return "", err
	}
	if actor.ID == id {
		return "", ErrSelfStatusChange
	}

	return toggleStatus(ctx, s.Store, s.Audit, id, domain.AuditToggleUserStatus, nil)
}

// toggleStatus flips the status of id. owner, when set, must have created the
// account, otherwise it is reported as missing.
func toggleStatus(
	ctx context.Context,
	st store.Store,
	audit *AuditRecorder,
	id string,
	action domain.AuditAction,
	owner *string,
) (domain.UserStatus, error) {
	var next domain.UserStatus

	err := st.WithTx(ctx, func(tx store.Tx) error {
		user, err := loadUser(ctx, tx.Users(), id)
		if err != nil {
			return err
		}
		if owner != nil && !createdBy(user, *owner) {
			return ErrUserNotFound
		}

		next = user.Status.Toggle()
		if err := tx.Users().SetUserStatus(ctx, id, next); err != nil {
			return fmt.Errorf("failed to set status: %w", err)
		}

		return audit.Record(ctx, tx.AuditLogs(), AuditEntry{
			Action:       action,
			ResourceType: domain.ResourceUser,
			ResourceID:   id,
			Details: map[string]any{
				"old_status": user.Status,
				"new_status": next,
			},
		})
	})
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("user status changed",
		slog.String("user_id", id),
		slog.String("status", string(next)),
	)
	return next, nil
}

func createdBy(u domain.User, owner string) bool {
	return u.CreatedBy != nil && *u.CreatedBy == owner
}
