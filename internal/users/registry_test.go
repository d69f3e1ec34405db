package users

import (
	"context"
	"errors"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/plateup-labs/plateup/internal/kvstore"
	"gorm.io/gorm"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&kvstore.Entry{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	store, err := kvstore.NewStore(kvstore.StoreConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	registry, err := NewRegistry(RegistryConfig{Store: store})
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return registry
}

func TestRegisterTrimsAndPersists(t *testing.T) {
	registry := newTestRegistry(t)

	user, err := registry.Register(context.Background(), "  dana  ")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Name != "dana" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
	if user.Role != RoleMember {
		t.Fatalf("expected member role, got %q", user.Role)
	}

	found, ok, err := registry.Lookup(context.Background(), "dana")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !ok || found.Name != "dana" {
		t.Fatalf("expected registered user to be found, got %v ok=%v", found, ok)
	}
}

func TestRegisterBlankNameRejected(t *testing.T) {
	registry := newTestRegistry(t)

	if _, err := registry.Register(context.Background(), "   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestRegisterDeduplicates(t *testing.T) {
	registry := newTestRegistry(t)

	ctx := context.Background()
	if _, err := registry.Register(ctx, "dana"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := registry.Register(ctx, "dana"); err != nil {
		t.Fatalf("second register failed: %v", err)
	}

	roster, err := registry.All(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("expected one registered user, got %d", len(roster))
	}
}

func TestReservedAdminNameGetsAdminRole(t *testing.T) {
	registry := newTestRegistry(t)

	user, err := registry.Register(context.Background(), "admin")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !user.IsAdmin() {
		t.Fatalf("expected admin role for reserved name, got %q", user.Role)
	}

	other, err := registry.Register(context.Background(), "dana")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if other.IsAdmin() {
		t.Fatalf("regular names must not get the admin role")
	}
}
