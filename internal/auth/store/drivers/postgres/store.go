// Package postgres is the PostgreSQL driver for the auth store. It talks to
// the database through pgx's database/sql adapter so the generated queries
// stay identical in shape to the sqlite driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/store/drivers/postgres/gen"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
	db   *sql.DB
	q    *gen.Queries
}

// NewStore connects to the database at dsn (a postgres:// URL or key/value DSN).
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	db := stdlib.OpenDBFromPool(pool)

	return &Store{
		pool: pool,
		db:   db,
		q:    gen.New(db),
	}, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	s.pool.Close()
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithTx executes fn within a transaction, rolled back when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(&txStore{q: gen.New(tx)}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users         { return &usersRepo{q: s.q} }
func (s *Store) AuditLogs() store.AuditLogs { return &auditLogsRepo{q: s.q} }

type txStore struct {
	q *gen.Queries
}

func (t *txStore) Users() store.Users         { return &usersRepo{q: t.q} }
func (t *txStore) AuditLogs() store.AuditLogs { return &auditLogsRepo{q: t.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func optionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}

func encodeJSON(v any) (sql.NullString, error) {
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
		Gender:       row.Gender.String,
		BirthDate:    row.BirthDate.String,
		CreatedBy:    stringPtr(row.CreatedBy),
		TOTPSecret:   stringPtr(row.TotpSecret),
		TOTPEnabled:  row.TotpEnabled,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    timePtr(row.DeletedAt),
	}
}
