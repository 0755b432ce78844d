package store

import (
	"context"
	"errors"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so a Tx can hand out
// the same repositories bound to the transaction, and so nobody opens a
// transaction inside another one by accident.
type Store interface {
	Users() Users
	AuditLogs() AuditLogs

	ApplyMigrations() error

	// WithTx executes fn within a transaction. The transaction is rolled back
	// when fn returns an error and committed otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped view of the store.
type Tx interface {
	Users() Users
	AuditLogs() AuditLogs
}

// Users is the credential store. Soft deleted users are never returned.
type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByIdentifier matches either the phone number or the national code.
	GetUserByIdentifier(ctx context.Context, identifier string) (domain.User, error)

	GetUserByNationalCode(ctx context.Context, nationalCode string) (domain.User, error)

	// CreateUser inserts a new user, the id is provided by the caller (ULID).
	// Returns ErrAlreadyExists when the national code is taken.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateUserProfile(ctx context.Context, id string, p domain.ProfileUpdate) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	UpdatePasswordHash(ctx context.Context, id string, hash string) error

	// UpdateTOTP replaces both TOTP columns together.
	UpdateTOTP(ctx context.Context, id string, secret *string, enabled bool) error

	SetUserStatus(ctx context.Context, id string, status domain.UserStatus) error

	ListUsers(ctx context.Context) ([]domain.User, error)
	ListUsersByCreator(ctx context.Context, creatorID string) ([]domain.User, error)
	ListUsersWithTOTPSecret(ctx context.Context) ([]domain.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// AuditFilter narrows ListAuditLogs. Zero values mean no filter.
type AuditFilter struct {
	ActorUserID string
	Action      domain.AuditAction
	Limit       int
	Offset      int
}

const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 500
)

// Normalize clamps the page size.
func (f AuditFilter) Normalize() AuditFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultAuditPageSize
	}
	if f.Limit > MaxAuditPageSize {
		f.Limit = MaxAuditPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// AuditLogs is append only, there is no update or delete.
type AuditLogs interface {
	CreateAuditLog(ctx context.Context, rec domain.AuditRecord) error

	// ListAuditLogs returns records newest first.
	ListAuditLogs(ctx context.Context, filter AuditFilter) ([]domain.AuditRecord, error)
}
