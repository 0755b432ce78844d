package sqlite

import (
	"context"
	"fmt"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/sqlite/gen"
)

type auditLogsRepo struct {
	q *gen.Queries
}

func (r *auditLogsRepo) CreateAuditLog(ctx context.Context, rec domain.AuditRecord) error {
	details, err := mapJSON(rec.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	var actor any
	if rec.ActorDetails != nil {
		actor = rec.ActorDetails
	}
	actorDetails, err := mapJSON(actor)
	if err != nil {
		return fmt.Errorf("failed to encode actor details: %w", err)
	}

	return r.q.CreateAuditLog(ctx, gen.CreateAuditLogParams{
		ID:           rec.ID,
		ActorUserID:  mapOptionalString(rec.ActorUserID),
		Action:       string(rec.Action),
		ResourceType: rec.ResourceType,
		ResourceID:   mapOptionalString(rec.ResourceID),
		Details:      details,
		ActorDetails: actorDetails,
		IpAddress:    mapOptionalString(rec.IPAddress),
		UserAgent:    mapOptionalString(rec.UserAgent),
		OccurredAt:   rec.OccurredAt.UTC(),
	})
}

func (r *auditLogsRepo) ListAuditLogs(ctx context.Context, filter store.AuditFilter) ([]domain.AuditRecord, error) {
	filter = filter.Normalize()

	rows, err := r.q.ListAuditLogs(ctx, gen.ListAuditLogsParams{
		ActorUserID: filter.ActorUserID,
		Action:      string(filter.Action),
		Limit:       int64(filter.Limit),
		Offset:      int64(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.AuditRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := mapAuditLog(row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audit log %s: %w", row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
