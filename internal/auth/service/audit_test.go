package service

import (
	"context"
	"testing"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestAuditRecorder_Record(t *testing.T) {
	st := newTestStore(t)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("IRST", 12600))
	calls := 0
	rec := &AuditRecorder{Store: st, Now: func() time.Time {
		calls++
		return at.Add(time.Duration(calls-1) * time.Second)
	}}

	actor := seedUser(t, st, withRole(domain.RoleAdmin))

	t.Run("captures actor and provenance", func(t *testing.T) {
		err := rec.Record(actorCtx(actor), nil, AuditEntry{
			Action:       domain.AuditToggleUserStatus,
			ResourceType: domain.ResourceUser,
			ResourceID:   "target-1",
			Details:      map[string]any{"old_status": "active", "new_status": "inactive"},
		})
		require.NoError(t, err)

		got := lastAudit(t, st)
		require.NotEmpty(t, got.ID)
		require.Equal(t, domain.AuditToggleUserStatus, got.Action)
		require.Equal(t, actor.ID, *got.ActorUserID)
		require.Equal(t, &domain.ActorDetails{Name: actor.FullName, Role: domain.RoleAdmin}, got.ActorDetails)
		require.Equal(t, "target-1", *got.ResourceID)
		require.Equal(t, "inactive", got.Details["new_status"])
		require.Equal(t, "203.0.113.7", *got.IPAddress)
		require.Equal(t, "service-test", *got.UserAgent)
		require.True(t, at.Equal(got.OccurredAt))
	})

	t.Run("system action has no actor", func(t *testing.T) {
		require.NoError(t, rec.Record(context.Background(), nil, AuditEntry{
			Action:       domain.AuditEncryptTOTPSecret,
			ResourceType: domain.ResourceUser,
		}))

		got := lastAudit(t, st)
		require.Nil(t, got.ActorUserID)
		require.Nil(t, got.ActorDetails)
		require.Nil(t, got.ResourceID)
		require.Nil(t, got.IPAddress)
		require.Empty(t, got.Details)
	})

	t.Run("ids are unique", func(t *testing.T) {
		records, err := rec.List(context.Background(), store.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.NotEqual(t, records[0].ID, records[1].ID)
	})
}

func TestAuditRecorder_Failure(t *testing.T) {
	st := newTestStore(t)
	rec := &AuditRecorder{Store: brokenAudit{st}}
	entry := AuditEntry{Action: domain.AuditUserLogout, ResourceType: domain.ResourceSession}

	err := rec.Record(context.Background(), nil, entry)
	require.ErrorIs(t, err, ErrAuditWrite)

	require.NotPanics(t, func() {
		rec.RecordBestEffort(context.Background(), nil, entry)
	})
}

func TestAuditRecorder_ListFilter(t *testing.T) {
	st := newTestStore(t)
	rec := &AuditRecorder{Store: st}
	admin := seedUser(t, st, withRole(domain.RoleAdmin))
	doctor := seedUser(t, st)

	require.NoError(t, rec.Record(actorCtx(admin), nil, AuditEntry{Action: domain.AuditCreateUser, ResourceType: domain.ResourceUser}))
	require.NoError(t, rec.Record(actorCtx(doctor), nil, AuditEntry{Action: domain.AuditCreateStaff, ResourceType: domain.ResourceUser}))
	require.NoError(t, rec.Record(actorCtx(doctor), nil, AuditEntry{Action: domain.AuditUpdateStaff, ResourceType: domain.ResourceUser}))

	byActor, err := rec.List(context.Background(), store.AuditFilter{ActorUserID: doctor.ID})
	require.NoError(t, err)
	require.Len(t, byActor, 2)

	byAction, err := rec.List(context.Background(), store.AuditFilter{Action: domain.AuditCreateUser})
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	require.Equal(t, admin.ID, *byAction[0].ActorUserID)
}
