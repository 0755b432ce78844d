package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/sqlite/gen"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

// NewStore opens a sqlite database. An in-memory DSN is pinned to a single
// connection, otherwise every pooled connection would see its own empty database.
func NewStore(dsn string) (*Store, error) {
	memory := strings.Contains(dsn, ":memory:")
	if !memory {
		dsn = withPragmas(dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if memory {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

// withPragmas applies per-connection pragmas through the modernc DSN syntax.
func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
// Inside fn only the repositories of tx may be used.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(newTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users         { return &usersRepo{q: s.q} }
func (s *Store) AuditLogs() store.AuditLogs { return &auditLogsRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapUniqueViolation(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func mapUser(row gen.User) domain.User {
	return domain.User{
		ID:           row.ID,
		NationalCode: row.NationalCode,
		PhoneNumber:  row.PhoneNumber,
		FullName:     row.FullName,
		PasswordHash: row.PasswordHash,
		Role:         domain.Role(row.Role),
		Status:       domain.UserStatus(row.Status),
		Gender:       mapNullString(row.Gender),
		BirthDate:    mapNullString(row.BirthDate),
		CreatedBy:    mapNullStringPtr(row.CreatedBy),
		TOTPSecret:   mapNullStringPtr(row.TotpSecret),
		TOTPEnabled:  row.TotpEnabled,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    mapNullTimePtr(row.DeletedAt),
	}
}

func mapUsers(rows []gen.User) []domain.User {
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapUser(row))
	}
	return out
}

func mapAuditLog(row gen.AuditLog) (domain.AuditRecord, error) {
	rec := domain.AuditRecord{
		ID:           row.ID,
		ActorUserID:  mapNullStringPtr(row.ActorUserID),
		Action:       domain.AuditAction(row.Action),
		ResourceType: row.ResourceType,
		ResourceID:   mapNullStringPtr(row.ResourceID),
		IPAddress:    mapNullStringPtr(row.IpAddress),
		UserAgent:    mapNullStringPtr(row.UserAgent),
		OccurredAt:   row.OccurredAt.UTC(),
	}

	if row.Details.Valid {
		if err := json.Unmarshal([]byte(row.Details.String), &rec.Details); err != nil {
			return domain.AuditRecord{}, err
		}
	}
	if row.ActorDetails.Valid {
		var actor domain.ActorDetails
		if err := json.Unmarshal([]byte(row.ActorDetails.String), &actor); err != nil {
			return domain.AuditRecord{}, err
		}
		rec.ActorDetails = &actor
	}

	return rec, nil
}
