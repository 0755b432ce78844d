package service

import (
	"context"
	"testing"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestStaff_Lifecycle(t *testing.T) {
	st := newTestStore(t)
	svc := &StaffService{Store: st, Audit: &AuditRecorder{Store: st}}
	doctor := seedUser(t, st)
	ctx := actorCtx(doctor)

	a := validAccount("")
	clerk, err := svc.CreateStaff(ctx, a)
	require.NoError(t, err)
	require.Equal(t, domain.RoleClerk, clerk.Role)
	require.Equal(t, doctor.ID, *clerk.CreatedBy)

	rec := lastAudit(t, st)
	require.Equal(t, domain.AuditCreateStaff, rec.Action)
	require.Equal(t, doctor.ID, rec.Details["created_by"])

	staff, err := svc.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	require.Equal(t, clerk.ID, staff[0].ID)

	t.Run("update with password", func(t *testing.T) {
		phone := "09351112233"
		pw := "a-new-password"
		updated, err := svc.UpdateStaff(ctx, clerk.ID, StaffUpdate{
			Profile:  domain.ProfileUpdate{PhoneNumber: &phone},
			Password: &pw,
		})
		require.NoError(t, err)
		require.Equal(t, phone, updated.PhoneNumber)
		require.NoError(t, cryptox.VerifyPassword(pw, updated.PasswordHash))

		rec := lastAudit(t, st)
		require.Equal(t, domain.AuditUpdateStaff, rec.Action)
		require.Equal(t, []any{"phone_number", "password"}, rec.Details["changed_fields"])
	})

	t.Run("short password", func(t *testing.T) {
		pw := "short"
		_, err := svc.UpdateStaff(ctx, clerk.ID, StaffUpdate{Password: &pw})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("toggle", func(t *testing.T) {
		status, err := svc.ToggleStaffStatus(ctx, clerk.ID)
		require.NoError(t, err)
		require.Equal(t, domain.UserStatusInactive, status)
		require.Equal(t, domain.AuditToggleStaffStatus, lastAudit(t, st).Action)
	})
}

func TestStaff_OnlyClerks(t *testing.T) {
	st := newTestStore(t)
	svc := &StaffService{Store: st, Audit: &AuditRecorder{Store: st}}
	ctx := actorCtx(seedUser(t, st))

	for _, role := range []domain.Role{domain.RoleDoctor, domain.RoleAdmin, domain.RolePatient} {
		_, err := svc.CreateStaff(ctx, validAccount(role))
		require.ErrorIs(t, err, ErrInvalidInput, role)
	}
}

func TestStaff_OwnershipIsolation(t *testing.T) {
	st := newTestStore(t)
	svc := &StaffService{Store: st, Audit: &AuditRecorder{Store: st}}
	owner := seedUser(t, st)
	other := seedUser(t, st)
	clerk := seedUser(t, st, withRole(domain.RoleClerk), withCreator(owner.ID))
	ctx := actorCtx(other)

	staff, err := svc.ListStaff(ctx)
	require.NoError(t, err)
	require.Empty(t, staff)

	name := "Hijacked Name"
	_, err = svc.UpdateStaff(ctx, clerk.ID, StaffUpdate{Profile: domain.ProfileUpdate{FullName: &name}})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.ToggleStaffStatus(ctx, clerk.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	stored, err := st.Users().GetUserByID(context.Background(), clerk.ID)
	require.NoError(t, err)
	require.Equal(t, clerk.FullName, stored.FullName)
	require.Equal(t, domain.UserStatusActive, stored.Status)
	require.Empty(t, auditActions(t, st))
}
