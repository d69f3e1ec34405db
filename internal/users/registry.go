// Package users manages the append-only username registry. There is no
// password and no uniqueness rule beyond deduplication: declaring a name
// that already exists signs in as that user.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plateup-labs/plateup/internal/kvstore"
	"go.uber.org/zap"
)

// Role grants capabilities beyond ownership.
type Role string

const (
	// RoleMember is the default role for every registered name.
	RoleMember Role = "member"
	// RoleAdmin may edit and delete any recipe.
	RoleAdmin Role = "admin"
)

// reservedAdminName receives RoleAdmin when first registered.
const reservedAdminName = "admin"

const registryKey = "users"

// ErrEmptyName indicates a login attempt with a blank display name.
var ErrEmptyName = errors.New("users: display name is required")

// User is one registered display name and its role.
type User struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the user holds blanket mutation privilege.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegistryConfig describes the dependencies required by the registry.
type RegistryConfig struct {
	Store  *kvstore.Store
	Logger *zap.Logger
}

// Registry persists the set of known display names.
type Registry struct {
	store  *kvstore.Store
	logger *zap.Logger
}

// NewRegistry constructs the registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("users: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: cfg.Store, logger: logger}, nil
}

// Register returns the user record for the given display name, creating it
// on first sight. Names are trimmed; a blank name is rejected. The reserved
// admin name is granted RoleAdmin at creation so authorization never has to
// compare against a magic string.
func (r *Registry) Register(ctx context.Context, name string) (User, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return User{}, ErrEmptyName
	}

	roster, err := r.load(ctx)
	if err != nil {
		return User{}, err
	}
	for _, existing := range roster {
		if existing.Name == trimmed {
			return existing, nil
		}
	}

	user := User{Name: trimmed, Role: RoleMember}
	if trimmed == reservedAdminName {
		user.Role = RoleAdmin
	}
	roster = append(roster, user)
	if err := r.store.Put(ctx, registryKey, roster); err != nil {
		return User{}, err
	}
	r.logger.Info("registered user",
		zap.String("name", user.Name),
		zap.String("role", string(user.Role)))
	return user, nil
}

// Lookup returns the record for name if it has been registered.
func (r *Registry) Lookup(ctx context.Context, name string) (User, bool, error) {
	roster, err := r.load(ctx)
	if err != nil {
		return User{}, false, err
	}
	for _, existing := range roster {
		if existing.Name == name {
			return existing, true, nil
		}
	}
	return User{}, false, nil
}

// All returns every registered user in registration order.
func (r *Registry) All(ctx context.Context) ([]User, error) {
	return r.load(ctx)
}

func (r *Registry) load(ctx context.Context) ([]User, error) {
	var roster []User
	if _, err := r.store.Get(ctx, registryKey, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}
