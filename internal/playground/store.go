package playground

import "context"

// Store persists playground sessions for the lifetime of one test run.
// Sessions expire on their own; nothing here outlives the store's TTL.
type Store interface {
	// Save stores a session unconditionally. Used on creation only.
	Save(ctx context.Context, s *Session) error

	// SaveIfVersion stores s only if the persisted session still carries
	// the expected version, returning ErrStaleSession otherwise. This is
	// the guard that drops responses arriving after a reset.
	SaveIfVersion(ctx context.Context, s *Session, expected int64) error

	// Get retrieves a session by ID, returning ErrSessionNotFound for
	// unknown or expired IDs.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error

	// CheckHealth verifies the storage backend is reachable.
	CheckHealth(ctx context.Context) error
}
