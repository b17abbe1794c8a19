package correlation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(NewMemStore(time.Hour))
}

func TestManagerBindResolve(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Bind(ctx, "state-abc123", "session-1"); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	got, err := m.Resolve(ctx, "state-abc123")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "session-1" {
		t.Errorf("Resolve() = %q, want %q", got, "session-1")
	}
}

func TestManagerResolveUnknown(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if _, err := m.Resolve(ctx, "never-issued"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("Resolve() error = %v, want ErrUnknownState", err)
	}
}

func TestManagerResolveEmpty(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if _, err := m.Resolve(ctx, ""); !errors.Is(err, ErrUnknownState) {
		t.Errorf("Resolve(\"\") error = %v, want ErrUnknownState", err)
	}
}

func TestManagerBindValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Bind(ctx, "", "session-1"); err == nil {
		t.Error("Bind() with empty state should fail")
	}
	if err := m.Bind(ctx, "state-abc123", ""); err == nil {
		t.Error("Bind() with empty session ID should fail")
	}
}

func TestManagerRelease(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Bind(ctx, "state-abc123", "session-1"); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if err := m.Release(ctx, "state-abc123"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := m.Resolve(ctx, "state-abc123"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("Resolve() after release error = %v, want ErrUnknownState", err)
	}

	// Releasing again, or releasing nothing, is fine.
	if err := m.Release(ctx, "state-abc123"); err != nil {
		t.Errorf("Release() of released state error = %v", err)
	}
	if err := m.Release(ctx, ""); err != nil {
		t.Errorf("Release(\"\") error = %v", err)
	}
}

func TestMemStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(10 * time.Millisecond)

	if err := store.BindState(ctx, "short-lived", "session-1"); err != nil {
		t.Fatalf("BindState() error = %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	if _, err := store.LookupState(ctx, "short-lived"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("LookupState() after expiry error = %v, want ErrUnknownState", err)
	}
}
