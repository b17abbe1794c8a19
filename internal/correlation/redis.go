package correlation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statePrefix = "playground:state:"

// RedisStore implements Store on Redis. Bindings expire with the same TTL as
// the sessions they reference.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed binding store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// CheckHealth verifies Redis connectivity.
func (s *RedisStore) CheckHealth(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// BindState associates a state value with a session ID.
func (s *RedisStore) BindState(ctx context.Context, state, sessionID string) error {
	if err := s.client.Set(ctx, statePrefix+state, sessionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing state binding: %w", err)
	}
	return nil
}

// LookupState resolves a state value to its session ID.
func (s *RedisStore) LookupState(ctx context.Context, state string) (string, error) {
	sessionID, err := s.client.Get(ctx, statePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownState
	}
	if err != nil {
		return "", fmt.Errorf("looking up state: %w", err)
	}
	return sessionID, nil
}

// ReleaseState removes a binding.
func (s *RedisStore) ReleaseState(ctx context.Context, state string) error {
	if err := s.client.Del(ctx, statePrefix+state).Err(); err != nil {
		return fmt.Errorf("releasing state: %w", err)
	}
	return nil
}
