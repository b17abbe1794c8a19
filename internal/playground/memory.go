package playground

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemStore implements Store in process memory, for development and tests.
// It mirrors the Redis store's TTL behavior via go-cache.
type MemStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemStore creates an in-memory session store with the given TTL.
func NewMemStore(ttl time.Duration) *MemStore {
	return &MemStore{cache: gocache.New(ttl, 2*ttl)}
}

// CheckHealth always succeeds for the in-memory store.
func (s *MemStore) CheckHealth(ctx context.Context) error { return nil }

// Save stores a session unconditionally.
func (s *MemStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.SetDefault(sess.ID, sess.Clone())
	return nil
}

// SaveIfVersion stores sess only when the held version equals expected.
func (s *MemStore) SaveIfVersion(ctx context.Context, sess *Session, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(sess.ID)
	if !ok {
		return ErrSessionNotFound
	}
	if v.(*Session).Version != expected {
		return ErrStaleSession
	}
	s.cache.SetDefault(sess.ID, sess.Clone())
	return nil
}

// Get retrieves a session by ID.
func (s *MemStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*Session).Clone(), nil
}

// Delete removes a session.
func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(id)
	return nil
}
