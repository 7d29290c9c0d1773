package identity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/0SRAF0/TravelPlaner/internal/store"
)

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "chatd.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestBootstrapCreatesProfile(t *testing.T) {
	repo := newTestRepo(t)

	p, err := Bootstrap(context.Background(), repo, "")
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if !IsValidAnonID(p.UserID) {
		t.Errorf("Expected anonymous id, got %q", p.UserID)
	}
	if p.Name == "" {
		t.Error("Expected derived display name")
	}
}

func TestBootstrapIsStable(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := Bootstrap(ctx, repo, "")
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	second, err := Bootstrap(ctx, repo, "")
	if err != nil {
		t.Fatalf("Second bootstrap failed: %v", err)
	}
	if first.UserID != second.UserID {
		t.Errorf("Expected stable identity, got %q then %q", first.UserID, second.UserID)
	}
}

func TestBootstrapPreferredNameOverride(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := Bootstrap(ctx, repo, "")
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	renamed, err := Bootstrap(ctx, repo, "Ann")
	if err != nil {
		t.Fatalf("Bootstrap with name failed: %v", err)
	}
	if renamed.UserID != first.UserID {
		t.Errorf("Rename changed identity: %q vs %q", renamed.UserID, first.UserID)
	}
	if renamed.Name != "Ann" {
		t.Errorf("Expected preferred name, got %q", renamed.Name)
	}
}
