// Package ratings tracks which recipes each user has already scored,
// enforcing the at-most-once rating rule. Sets are append-only: ids are
// never removed, even when the recipe they point at is deleted.
package ratings

import (
	"context"
	"fmt"

	"github.com/plateup-labs/plateup/internal/kvstore"
	"go.uber.org/zap"
)

const keyPrefix = "ratedByUser_"

// ServiceConfig describes the dependencies required by the service.
type ServiceConfig struct {
	Store  *kvstore.Store
	Logger *zap.Logger
}

// Service persists one rated-id set per username.
type Service struct {
	store  *kvstore.Store
	logger *zap.Logger
}

// NewService constructs the rated-set service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("ratings: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: cfg.Store, logger: logger}, nil
}

// List returns every recipe id the user has rated, in rating order.
func (s *Service) List(ctx context.Context, username string) ([]string, error) {
	var ids []string
	if _, err := s.store.Get(ctx, keyPrefix+username, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Contains reports whether the user has already rated the recipe.
func (s *Service) Contains(ctx context.Context, username, recipeID string) (bool, error) {
	ids, err := s.List(ctx, username)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == recipeID {
			return true, nil
		}
	}
	return false, nil
}

// Add records that the user rated the recipe. Adding an id that is already
// present is a no-op, preserving the set semantics of the stored list.
func (s *Service) Add(ctx context.Context, username, recipeID string) error {
	ids, err := s.List(ctx, username)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == recipeID {
			return nil
		}
	}
	ids = append(ids, recipeID)
	if err := s.store.Put(ctx, keyPrefix+username, ids); err != nil {
		return err
	}
	s.logger.Debug("rated-set updated",
		zap.String("user", username),
		zap.String("recipe_id", recipeID))
	return nil
}
