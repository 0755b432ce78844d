// Package session holds the short-lived server-side state behind stateless
// session tokens: revoked session ids and the last TOTP step each user spent.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps backend failures so callers can tell them apart from
// a negative answer.
var ErrUnavailable = errors.New("session_store_unavailable")

// Revocations tracks session ids that were logged out before their token expired.
type Revocations interface {
	// Revoke marks sid as revoked until the token's own expiry.
	Revoke(ctx context.Context, sid string, until time.Time) error
	IsRevoked(ctx context.Context, sid string) (bool, error)
}

// ReplayGuard remembers the newest TOTP time step accepted per user.
type ReplayGuard interface {
	// Use consumes step for userID. It returns false when step is not newer
	// than the last step this user consumed.
	Use(ctx context.Context, userID string, step int64) (bool, error)
}

// Store is implemented by both backends.
type Store interface {
	Revocations
	ReplayGuard
	Ping(ctx context.Context) error
	Close() error
}

// DefaultReplayWindow bounds how long a consumed step is remembered. A code
// is only valid for period*(2*skew+1), so anything beyond that is unreachable.
const DefaultReplayWindow = 5 * time.Minute
