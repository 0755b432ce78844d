package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// useStep stores ARGV[1] under KEYS[1] only when it is greater than the stored
// value. Returns 1 when stored, 0 when the step was already spent.
var useStep = redis.NewScript(`
local last = redis.call("GET", KEYS[1])
if last and tonumber(last) >= tonumber(ARGV[1]) then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

type RedisStore struct {
	rdb          *redis.Client
	prefix       string
	replayWindow time.Duration
	now          func() time.Time
}

// NewRedisStore wraps an existing client. Keys are namespaced with prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		rdb:          rdb,
		prefix:       prefix,
		replayWindow: DefaultReplayWindow,
		now:          time.Now,
	}
}

// OpenRedis connects to the server described by a redis:// URL.
func OpenRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return NewRedisStore(rdb, prefix), nil
}

func (s *RedisStore) revokedKey(sid string) string { return s.prefix + "rev:" + sid }
func (s *RedisStore) stepKey(userID string) string { return s.prefix + "totp:" + userID }

func (s *RedisStore) Revoke(ctx context.Context, sid string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil // already expired
	}
	if err := s.rdb.Set(ctx, s.revokedKey(sid), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, sid string) (bool, error) {
	err := s.rdb.Get(ctx, s.revokedKey(sid)).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (s *RedisStore) Use(ctx context.Context, userID string, step int64) (bool, error) {
	res, err := useStep.Run(ctx, s.rdb,
		[]string{s.stepKey(userID)},
		step, s.replayWindow.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res == 1, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
