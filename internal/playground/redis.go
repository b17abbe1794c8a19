package playground

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "playground:session:"

// RedisStore implements Store on Redis. Sessions are JSON blobs under a TTL;
// SaveIfVersion uses WATCH so concurrent writers lose instead of clobbering.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store with the given TTL.
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

// Save stores a session unconditionally.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := s.client.Set(ctx, sessionPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// SaveIfVersion stores sess only when the persisted version equals expected.
func (s *RedisStore) SaveIfVersion(ctx context.Context, sess *Session, expected int64) error {
	key := sessionPrefix + sess.ID

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("reading session: %w", err)
		}

		var current Session
		if err := json.Unmarshal(data, &current); err != nil {
			return fmt.Errorf("unmarshaling session: %w", err)
		}
		if current.Version != expected {
			return ErrStaleSession
		}

		payload, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshaling session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStaleSession
	}
	return err
}

// Get retrieves a session by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshaling session: %w", err)
	}
	return &sess, nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
