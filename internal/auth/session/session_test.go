package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := session.NewRedisStore(rdb, "ehr:")
	t.Cleanup(func() { _ = st.Close() })

	return st, mr
}

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, st session.Store)) {
	t.Run("redis", func(t *testing.T) {
		st, _ := newRedisStore(t)
		fn(t, st)
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, session.NewMemoryStore())
	})
}

func TestRevocations(t *testing.T) {
	backends(t, func(t *testing.T, st session.Store) {
		ctx := context.Background()

		revoked, err := st.IsRevoked(ctx, "sid-1")
		require.NoError(t, err)
		require.False(t, revoked)

		require.NoError(t, st.Revoke(ctx, "sid-1", time.Now().Add(time.Hour)))

		revoked, err = st.IsRevoked(ctx, "sid-1")
		require.NoError(t, err)
		require.True(t, revoked)

		revoked, err = st.IsRevoked(ctx, "sid-2")
		require.NoError(t, err)
		require.False(t, revoked)

		// An already expired token needs no entry.
		require.NoError(t, st.Revoke(ctx, "sid-3", time.Now().Add(-time.Minute)))
		revoked, err = st.IsRevoked(ctx, "sid-3")
		require.NoError(t, err)
		require.False(t, revoked)
	})
}

func TestReplayGuard(t *testing.T) {
	backends(t, func(t *testing.T, st session.Store) {
		ctx := context.Background()

		tests := []struct {
			name   string
			user   string
			step   int64
			wantOK bool
		}{
			{"first use", "u1", 100, true},
			{"same step again", "u1", 100, false},
			{"older step", "u1", 99, false},
			{"newer step", "u1", 101, true},
			{"other user same step", "u2", 100, true},
		}

		for _, tt := range tests {
			ok, err := st.Use(ctx, tt.user, tt.step)
			require.NoError(t, err, tt.name)
			require.Equal(t, tt.wantOK, ok, tt.name)
		}
	})
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t)

	require.NoError(t, st.Revoke(ctx, "sid", time.Now().Add(time.Minute)))
	ok, err := st.Use(ctx, "u1", 7)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(session.DefaultReplayWindow + time.Second)

	revoked, err := st.IsRevoked(ctx, "sid")
	require.NoError(t, err)
	require.False(t, revoked)

	ok, err = st.Use(ctx, "u1", 7)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	st, mr := newRedisStore(t)
	require.NoError(t, st.Ping(ctx))
	mr.Close()

	require.ErrorIs(t, st.Ping(ctx), session.ErrUnavailable)

	_, err := st.IsRevoked(ctx, "sid")
	require.ErrorIs(t, err, session.ErrUnavailable)

	_, err = st.Use(ctx, "u1", 1)
	require.ErrorIs(t, err, session.ErrUnavailable)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	st, err := session.OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0", "ehr:")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = session.OpenRedis(context.Background(), "not a url", "ehr:")
	require.Error(t, err)
}

func TestMemoryStore_Prune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	st := session.NewMemoryStore()
	st.Now = func() time.Time { return now }

	require.NoError(t, st.Revoke(ctx, "short", now.Add(time.Minute)))
	require.NoError(t, st.Revoke(ctx, "long", now.Add(time.Hour)))
	ok, err := st.Use(ctx, "u1", 1)
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, 0, st.Prune(ctx))

	now = now.Add(10 * time.Minute)
	require.Equal(t, 2, st.Prune(ctx))

	revoked, err := st.IsRevoked(ctx, "long")
	require.NoError(t, err)
	require.True(t, revoked)

	// The replay entry expired, so the same step is accepted again.
	ok, err = st.Use(ctx, "u1", 1)
	require.NoError(t, err)
	require.True(t, ok)
}
