package session

import (
	"context"
	"sync"
	"time"
)

type stepEntry struct {
	step    int64
	expires time.Time
}

// MemoryStore keeps everything in process. It is used when no redis server is
// configured, so state is lost on restart and not shared between replicas.
type MemoryStore struct {
	mu           sync.Mutex
	revoked      map[string]time.Time
	steps        map[string]stepEntry
	replayWindow time.Duration

	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked:      make(map[string]time.Time),
		steps:        make(map[string]stepEntry),
		replayWindow: DefaultReplayWindow,
		Now:          time.Now,
	}
}

func (s *MemoryStore) Revoke(_ context.Context, sid string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !until.After(s.Now()) {
		return nil
	}
	s.revoked[sid] = until
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, sid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[sid]
	return ok && s.Now().Before(until), nil
}

func (s *MemoryStore) Use(_ context.Context, userID string, step int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	if last, ok := s.steps[userID]; ok && now.Before(last.expires) && last.step >= step {
		return false, nil
	}
	s.steps[userID] = stepEntry{step: step, expires: now.Add(s.replayWindow)}
	return true, nil
}

// Prune drops expired entries and returns how many were removed.
func (s *MemoryStore) Prune(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	removed := 0
	for sid, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, sid)
			removed++
		}
	}
	for userID, e := range s.steps {
		if !now.Before(e.expires) {
			delete(s.steps, userID)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
