package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
	"github.com/google/uuid"
)

// AuditEntry is what a caller knows about an action. The recorder fills in
// the actor, provenance, id and timestamp.
type AuditEntry struct {
	Action       domain.AuditAction
	ResourceType string
	ResourceID   string
	Details      map[string]any
}

// AuditRecorder appends audit records. Mutations pass their transaction's
// AuditLogs so the record commits or rolls back with the change itself.
type AuditRecorder struct {
	Store store.Store
	Now   func() time.Time
}

// Record writes e. A failure is returned, so inside WithTx it aborts the
// surrounding mutation. A nil logs writes outside any transaction.
func (r *AuditRecorder) Record(ctx context.Context, logs store.AuditLogs, e AuditEntry) error {
	if logs == nil {
		logs = r.Store.AuditLogs()
	}

	rec := r.build(ctx, e)
	if err := logs.CreateAuditLog(ctx, rec); err != nil {
		slogx.FromContext(ctx).Error("failed to write audit log",
			slog.String("action", string(e.Action)),
			slog.String("resource_type", e.ResourceType),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %v", ErrAuditWrite, err)
	}
	return nil
}

// RecordBestEffort writes e and only logs a failure.
func (r *AuditRecorder) RecordBestEffort(ctx context.Context, logs store.AuditLogs, e AuditEntry) {
	_ = r.Record(ctx, logs, e)
}

// List returns audit records newest first.
func (r *AuditRecorder) List(ctx context.Context, filter store.AuditFilter) ([]domain.AuditRecord, error) {
	records, err := r.Store.AuditLogs().ListAuditLogs(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return records, nil
}

func (r *AuditRecorder) build(ctx context.Context, e AuditEntry) domain.AuditRecord {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	details := e.Details
	if details == nil {
		details = map[string]any{}
	}

	rec := domain.AuditRecord{
		ID:           uuid.NewString(),
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   optional(e.ResourceID),
		Details:      details,
		OccurredAt:   now().UTC(),
	}

	if actor, ok := ActorFromContext(ctx); ok {
		rec.ActorUserID = &actor.ID
		rec.ActorDetails = &domain.ActorDetails{Name: actor.Name, Role: actor.Role}
	}

	meta := RequestMetaFromContext(ctx)
	rec.IPAddress = optional(meta.IPAddress)
	rec.UserAgent = optional(meta.UserAgent)

	return rec
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
