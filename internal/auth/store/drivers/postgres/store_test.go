package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/postgres"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a throwaway postgres container and returns a migrated store.
func setupPostgres(t *testing.T) *postgres.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "ehr",
				"POSTGRES_PASSWORD": "ehr",
				"POSTGRES_DB":       "ehr_auth",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://ehr:ehr@%s:%s/ehr_auth?sslmode=disable", host, port.Port())
	st, err := postgres.NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestPostgresStore(t *testing.T) {
	st := setupPostgres(t)
	ctx := context.Background()

	doctor := domain.User{
		ID:           idx.New().String(),
		NationalCode: "0012345678",
		PhoneNumber:  "09120000001",
		FullName:     "Dr. Test",
		PasswordHash: "hash",
		Role:         domain.RoleDoctor,
	}
	require.NoError(t, st.Users().CreateUser(ctx, doctor))

	t.Run("lookup by either identifier", func(t *testing.T) {
		for _, ident := range []string{"0012345678", "09120000001"} {
			got, err := st.Users().GetUserByIdentifier(ctx, ident)
			require.NoError(t, err)
			require.Equal(t, doctor.ID, got.ID)
			require.Equal(t, domain.UserStatusActive, got.Status)
		}
		_, err := st.Users().GetUserByIdentifier(ctx, "unknown")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate national code", func(t *testing.T) {
		dup := doctor
		dup.ID = idx.New().String()
		require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("clerks by creator", func(t *testing.T) {
		clerk := domain.User{
			ID:           idx.New().String(),
			NationalCode: "0098765432",
			PhoneNumber:  "09120000002",
			FullName:     "Clerk",
			PasswordHash: "hash",
			Role:         domain.RoleClerk,
			CreatedBy:    &doctor.ID,
		}
		require.NoError(t, st.Users().CreateUser(ctx, clerk))

		clerks, err := st.Users().ListUsersByCreator(ctx, doctor.ID)
		require.NoError(t, err)
		require.Len(t, clerks, 1)
		require.Equal(t, clerk.ID, clerks[0].ID)
	})

	t.Run("totp update", func(t *testing.T) {
		secret := "v1:00:11:22"
		require.NoError(t, st.Users().UpdateTOTP(ctx, doctor.ID, &secret, true))
		got, err := st.Users().GetUserByID(ctx, doctor.ID)
		require.NoError(t, err)
		require.True(t, got.TOTPEnabled)
		require.Equal(t, secret, *got.TOTPSecret)
	})

	t.Run("audit rollback with the mutation", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().SetUserStatus(ctx, doctor.ID, domain.UserStatusInactive); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := st.Users().GetUserByID(ctx, doctor.ID)
		require.NoError(t, err)
		require.Equal(t, domain.UserStatusActive, got.Status)
	})

	t.Run("audit logs round trip", func(t *testing.T) {
		require.NoError(t, st.AuditLogs().CreateAuditLog(ctx, domain.AuditRecord{
			ID:           idx.New().String(),
			ActorUserID:  &doctor.ID,
			ActorDetails: &domain.ActorDetails{Name: doctor.FullName, Role: doctor.Role},
			Action:       domain.AuditCreateStaff,
			ResourceType: domain.ResourceUser,
			Details:      map[string]any{"role": "clerk"},
			OccurredAt:   time.Now(),
		}))

		logs, err := st.AuditLogs().ListAuditLogs(ctx, store.AuditFilter{ActorUserID: doctor.ID})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		require.Equal(t, "clerk", logs[0].Details["role"])
		require.Equal(t, domain.RoleDoctor, logs[0].ActorDetails.Role)
	})
}
