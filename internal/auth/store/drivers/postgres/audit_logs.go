package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/postgres/gen"
)

type auditLogsRepo struct {
	q *gen.Queries
}

func (r *auditLogsRepo) CreateAuditLog(ctx context.Context, rec domain.AuditRecord) error {
	var details any
	if rec.Details != nil {
		details = rec.Details
	}
	detailsJSON, err := encodeJSON(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	var actor any
	if rec.ActorDetails != nil {
		actor = rec.ActorDetails
	}
	actorJSON, err := encodeJSON(actor)
	if err != nil {
		return fmt.Errorf("failed to encode actor details: %w", err)
	}

	return r.q.CreateAuditLog(ctx, gen.CreateAuditLogParams{
		ID:           rec.ID,
		ActorUserID:  optionalString(rec.ActorUserID),
		Action:       string(rec.Action),
		ResourceType: rec.ResourceType,
		ResourceID:   optionalString(rec.ResourceID),
		Details:      detailsJSON,
		ActorDetails: actorJSON,
		IpAddress:    optionalString(rec.IPAddress),
		UserAgent:    optionalString(rec.UserAgent),
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
		rec := domain.AuditRecord{
			ID:           row.ID,
			ActorUserID:  stringPtr(row.ActorUserID),
			Action:       domain.AuditAction(row.Action),
			ResourceType: row.ResourceType,
			ResourceID:   stringPtr(row.ResourceID),
			IPAddress:    stringPtr(row.IpAddress),
			UserAgent:    stringPtr(row.UserAgent),
			OccurredAt:   row.OccurredAt.UTC(),
		}
		if row.Details.Valid {
			if err := json.Unmarshal([]byte(row.Details.String), &rec.Details); err != nil {
				return nil, fmt.Errorf("failed to decode audit log %s: %w", row.ID, err)
			}
		}
		if row.ActorDetails.Valid {
			rec.ActorDetails = &domain.ActorDetails{}
			if err := json.Unmarshal([]byte(row.ActorDetails.String), rec.ActorDetails); err != nil {
				return nil, fmt.Errorf("failed to decode audit log %s: %w", row.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
