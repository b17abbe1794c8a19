// Package correlation binds authorization state values to playground sessions.
//
// The state parameter round-trips through the provider's redirect. Binding it
// to the session that generated it makes the PKCE linkage explicit: the
// verifier used at exchange time is always the one stored by the session the
// state resolves to, not whatever happens to be lying around in the UI.
package correlation

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownState indicates a state value with no live session binding,
	// either never issued or already expired.
	ErrUnknownState = errors.New("unknown or expired state")
)

// Store persists state bindings with the same lifetime as the sessions they
// point at.
type Store interface {
	// BindState associates a state value with a session ID.
	BindState(ctx context.Context, state, sessionID string) error

	// LookupState resolves a state value to its session ID, returning
	// ErrUnknownState when no binding exists.
	LookupState(ctx context.Context, state string) (string, error)

	// ReleaseState removes a binding. Releasing an unknown state is not
	// an error.
	ReleaseState(ctx context.Context, state string) error

	// CheckHealth verifies the store is operational.
	CheckHealth(ctx context.Context) error
}

// Manager issues and resolves state bindings.
type Manager struct {
	store Store
}

// NewManager creates a correlation manager over a store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Bind records that state belongs to the given session.
func (m *Manager) Bind(ctx context.Context, state, sessionID string) error {
	if state == "" || sessionID == "" {
		return fmt.Errorf("state and session ID are required")
	}
	if err := m.store.BindState(ctx, state, sessionID); err != nil {
		return fmt.Errorf("binding state: %w", err)
	}
	return nil
}

// Resolve returns the session a state value belongs to.
func (m *Manager) Resolve(ctx context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrUnknownState
	}
	sessionID, err := m.store.LookupState(ctx, state)
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// Release drops a binding once its exchange completed or the session reset.
func (m *Manager) Release(ctx context.Context, state string) error {
	if state == "" {
		return nil
	}
	return m.store.ReleaseState(ctx, state)
}

// CheckHealth verifies the underlying store.
func (m *Manager) CheckHealth(ctx context.Context) error {
	if err := m.store.CheckHealth(ctx); err != nil {
		return fmt.Errorf("correlation store health check failed: %w", err)
	}
	return nil
}
