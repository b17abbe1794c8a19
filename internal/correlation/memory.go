package correlation

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemStore implements Store in process memory, for development and tests.
type MemStore struct {
	cache *gocache.Cache
}

// NewMemStore creates an in-memory binding store with the given TTL.
func NewMemStore(ttl time.Duration) *MemStore {
	return &MemStore{cache: gocache.New(ttl, 2*ttl)}
}

// CheckHealth always succeeds for the in-memory store.
func (s *MemStore) CheckHealth(ctx context.Context) error { return nil }

// BindState associates a state value with a session ID.
func (s *MemStore) BindState(ctx context.Context, state, sessionID string) error {
	s.cache.SetDefault(state, sessionID)
	return nil
}

// LookupState resolves a state value to its session ID.
func (s *MemStore) LookupState(ctx context.Context, state string) (string, error) {
	v, ok := s.cache.Get(state)
	if !ok {
		return "", ErrUnknownState
	}
	return v.(string), nil
}

// ReleaseState removes a binding.
func (s *MemStore) ReleaseState(ctx context.Context, state string) error {
	s.cache.Delete(state)
	return nil
}
