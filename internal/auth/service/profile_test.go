package service

import (
	"testing"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestProfile_Update(t *testing.T) {
	st := newTestStore(t)
	svc := &ProfileService{Store: st, Audit: &AuditRecorder{Store: st}}
	user := seedUser(t, st)
	ctx := actorCtx(user)

	gender, birth := "male", "1979-11-30"
	updated, err := svc.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Gender: &gender, BirthDate: &birth})
	require.NoError(t, err)
	require.Equal(t, gender, updated.Gender)
	require.Equal(t, birth, updated.BirthDate)
	require.Equal(t, user.FullName, updated.FullName)

	got, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, updated.Gender, got.Gender)

	rec := lastAudit(t, st)
	require.Equal(t, domain.AuditUpdateProfile, rec.Action)
	require.Equal(t, []any{"gender", "birth_date"}, rec.Details["changed_fields"])

	t.Run("empty update", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("invalid field", func(t *testing.T) {
		bad := "yesterday"
		_, err := svc.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{BirthDate: &bad})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestProfile_ChangePassword(t *testing.T) {
	st := newTestStore(t)
	svc := &ProfileService{Store: st, Audit: &AuditRecorder{Store: st}}
	user := seedUser(t, st)
	ctx := actorCtx(user)

	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "wrong-current", "brand-new-pass"), ErrInvalidPassword)
	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, testPassword, "short"), ErrInvalidInput)
	require.Empty(t, auditActions(t, st))

	require.NoError(t, svc.ChangePassword(ctx, user.ID, testPassword, "brand-new-pass"))

	stored, err := svc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, cryptox.VerifyPassword("brand-new-pass", stored.PasswordHash))
	require.ErrorIs(t, cryptox.VerifyPassword(testPassword, stored.PasswordHash), cryptox.ErrPasswordMismatch)

	rec := lastAudit(t, st)
	require.Equal(t, domain.AuditChangePassword, rec.Action)
	require.Empty(t, rec.Details)
}

func TestProfile_UpgradePasswordHash(t *testing.T) {
	st := newTestStore(t)
	svc := &ProfileService{Store: st, Audit: &AuditRecorder{Store: st}}
	user := seedUser(t, st, withBcryptPassword(t))
	require.True(t, cryptox.IsBcryptHash(user.PasswordHash))

	require.NoError(t, svc.UpgradePasswordHash(actorCtx(user), user.ID, testPassword))

	got, err := st.Users().GetUserByID(t.Context(), user.ID)
	require.NoError(t, err)
	require.False(t, cryptox.IsBcryptHash(got.PasswordHash))
	require.False(t, cryptox.NeedsRehash(got.PasswordHash))
	require.NoError(t, cryptox.VerifyPassword(testPassword, got.PasswordHash))
	require.Empty(t, auditActions(t, st))
}
