package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/shotcoach/internal/domain"
)

// MemoryStore implements Store with an in-process map. Sessions live for
// the lifetime of the process; growth is unbounded unless the TTL sweeper
// is enabled.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ShootSession
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.ShootSession)}
}

// Get retrieves a session by key, or (nil, nil) when absent.
func (s *MemoryStore) Get(ctx context.Context, key string) (*domain.ShootSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	// Hand out a copy so callers cannot mutate stored state in place.
	return sess.Clone(), nil
}

// Put creates or replaces a session record.
func (s *MemoryStore) Put(ctx context.Context, session *domain.ShootSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Key()] = session.Clone()
	return nil
}

// DeleteShoot removes all room sessions for a shoot. The prefix match is
// exact: key parts are escaped, so shoot "a" never matches shoot "a/b".
func (s *MemoryStore) DeleteShoot(ctx context.Context, shootID string) (int64, error) {
	prefix := domain.SessionKey(shootID, "")
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key := range s.sessions {
		if strings.HasPrefix(key, prefix) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed, nil
}

// DeleteIdle removes sessions not updated within ttl.
func (s *MemoryStore) DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds for the in-memory driver.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op: the map stays in place so requests still draining
// during shutdown never write to a nil map.
func (s *MemoryStore) Close() error {
	return nil
}
