package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MrEthical07/goAuthClient/session"
)

func openTestStore(t *testing.T, path, profile string) *Store {
	t.Helper()
	s, err := Open(path, profile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auth.db")
	s := openTestStore(t, path, "")

	if _, err := s.Load(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	in := &session.State{
		SchemaVersion: session.CurrentSchemaVersion,
		AccessToken:   "tok",
		UserID:        "u1",
		IsVerified:    true,
		SavedAt:       1700000000,
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	in.AccessToken = "tok-2"
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.AccessToken != "tok-2" || out.UserID != "u1" {
		t.Fatalf("unexpected state: %+v", out)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestStorePersistsAcrossOpenAndIsolatesProfiles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auth.db")

	first, err := Open(path, "alice")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Save(ctx, &session.State{AccessToken: "a"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	again := openTestStore(t, path, "alice")
	out, err := again.Load(ctx)
	if err != nil || out.AccessToken != "a" {
		t.Fatalf("expected persisted state, got %+v err=%v", out, err)
	}

	other := openTestStore(t, path, "bob")
	if _, err := other.Load(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected profile isolation, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  ", "x"); err == nil {
		t.Fatal("expected error for empty path")
	}
}
