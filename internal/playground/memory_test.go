package playground

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(time.Hour)

	s := &Session{ID: "s1", Version: 1, State: StateSelectApp}
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != "s1" || got.Version != 1 {
		t.Errorf("Get() = %+v", got)
	}

	// The stored copy must be isolated from later mutation.
	got.State = StateTokens
	again, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.State != StateSelectApp {
		t.Error("Get() returned a shared session value")
	}
}

func TestMemStoreGetUnknown(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(time.Hour)

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestMemStoreSaveIfVersion(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(time.Hour)

	s := &Session{ID: "s1", Version: 1}
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	next := &Session{ID: "s1", Version: 2}
	if err := store.SaveIfVersion(ctx, next, 1); err != nil {
		t.Fatalf("SaveIfVersion() error = %v", err)
	}

	// Second writer still holding version 1 loses.
	late := &Session{ID: "s1", Version: 2}
	if err := store.SaveIfVersion(ctx, late, 1); !errors.Is(err, ErrStaleSession) {
		t.Errorf("SaveIfVersion() stale error = %v, want ErrStaleSession", err)
	}

	// Unknown session fails outright.
	if err := store.SaveIfVersion(ctx, &Session{ID: "s2"}, 1); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("SaveIfVersion() unknown error = %v, want ErrSessionNotFound", err)
	}
}

func TestMemStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore(time.Hour)

	if err := store.Save(ctx, &Session{ID: "s1", Version: 1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}

	// Deleting again is fine.
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Errorf("Delete() of deleted session error = %v", err)
	}
}
