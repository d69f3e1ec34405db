package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plateup-labs/plateup/internal/kvstore"
	"github.com/plateup-labs/plateup/internal/ratings"
	"github.com/plateup-labs/plateup/internal/users"
	"go.uber.org/zap"
)

const catalogKey = "recipes"

var (
	errMissingStore      = errors.New("store is required")
	errMissingRatedSets  = errors.New("rated-set service is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// ServiceError wraps a failure with a stable operation.reason code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the operation.reason identifier.
func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "catalog.service.new"
	opList       = "catalog.list"
	opCreate     = "catalog.create"
	opEdit       = "catalog.edit"
	opDelete     = "catalog.delete"
	opRate       = "catalog.rate"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies required by the catalog service.
type ServiceConfig struct {
	Store      *kvstore.Store
	RatedSets  *ratings.Service
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service implements the catalog operations and the gated mutations. Every
// mutation reads the full collection, transforms it in memory, and rewrites
// it whole; the single-writer assumption comes with the storage model.
type Service struct {
	store      *kvstore.Store
	ratedSets  *ratings.Service
	idProvider IDProvider
	logger     *zap.Logger
}

// NewService constructs the catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, newServiceError(opServiceNew, "missing_store", errMissingStore)
	}
	if cfg.RatedSets == nil {
		return nil, newServiceError(opServiceNew, "missing_rated_sets", errMissingRatedSets)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		store:      cfg.Store,
		ratedSets:  cfg.RatedSets,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// CanModify reports whether the actor may edit or delete the recipe.
func CanModify(actor users.User, recipe Recipe) bool {
	return actor.Name == recipe.Owner || actor.IsAdmin()
}

// ListAll returns the full catalog in insertion order.
func (s *Service) ListAll(ctx context.Context) ([]Recipe, error) {
	var recipes []Recipe
	if _, err := s.store.Get(ctx, catalogKey, &recipes); err != nil {
		s.logError(opList, "read_failed", err)
		return nil, newServiceError(opList, "read_failed", err)
	}
	return recipes, nil
}

// Get returns the recipe with the given id.
func (s *Service) Get(ctx context.Context, id string) (Recipe, error) {
	recipes, err := s.ListAll(ctx)
	if err != nil {
		return Recipe{}, err
	}
	for _, recipe := range recipes {
		if recipe.ID == id {
			return recipe, nil
		}
	}
	return Recipe{}, ErrNotFound
}

// Create validates the draft and appends a new recipe owned by the actor.
func (s *Service) Create(ctx context.Context, actor users.User, draft Draft) (Recipe, error) {
	if actor.Name == "" {
		return Recipe{}, ErrLoginRequired
	}
	if err := draft.Validate(); err != nil {
		return Recipe{}, err
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreate, "id_generation_failed", err)
		return Recipe{}, newServiceError(opCreate, "id_generation_failed", err)
	}

	recipe := Recipe{
		ID:          id,
		Name:        strings.TrimSpace(draft.Name),
		ImageURL:    strings.TrimSpace(draft.ImageURL),
		TimeMinutes: draft.TimeMinutes,
		Difficulty:  draft.Difficulty,
		Ingredients: draft.Ingredients,
		Steps:       draft.Steps,
		Owner:       actor.Name,
		Rating:      0,
		RatingCount: 0,
	}

	recipes, err := s.ListAll(ctx)
	if err != nil {
		return Recipe{}, err
	}
	recipes = append(recipes, recipe)
	if err := s.persist(ctx, opCreate, recipes); err != nil {
		return Recipe{}, err
	}

	s.logger.Info("recipe created",
		zap.String("recipe_id", recipe.ID),
		zap.String("owner", recipe.Owner))
	return recipe, nil
}

// Edit replaces every field of the recipe except its identity and rating
// state. Authorization is checked before validation so a non-owner learns
// nothing about the form contents.
func (s *Service) Edit(ctx context.Context, actor users.User, id string, draft Draft) (Recipe, error) {
	recipes, err := s.ListAll(ctx)
	if err != nil {
		return Recipe{}, err
	}

	index := indexOf(recipes, id)
	if index < 0 {
		return Recipe{}, ErrNotFound
	}
	if !CanModify(actor, recipes[index]) {
		return Recipe{}, ErrNotAllowed
	}
	if err := draft.Validate(); err != nil {
		return Recipe{}, err
	}

	updated := recipes[index]
	updated.Name = strings.TrimSpace(draft.Name)
	updated.ImageURL = strings.TrimSpace(draft.ImageURL)
	updated.TimeMinutes = draft.TimeMinutes
	updated.Difficulty = draft.Difficulty
	updated.Ingredients = draft.Ingredients
	updated.Steps = draft.Steps
	recipes[index] = updated

	if err := s.persist(ctx, opEdit, recipes); err != nil {
		return Recipe{}, err
	}

	s.logger.Info("recipe edited",
		zap.String("recipe_id", updated.ID),
		zap.String("actor", actor.Name))
	return updated, nil
}

// Delete removes the recipe. Deleting an id that is not in the catalog is a
// no-op. Rated-set entries pointing at the deleted id are left in place;
// they only ever feed membership tests against the live catalog, so a stale
// id is never observable.
func (s *Service) Delete(ctx context.Context, actor users.User, id string) error {
	recipes, err := s.ListAll(ctx)
	if err != nil {
		return err
	}

	index := indexOf(recipes, id)
	if index < 0 {
		return nil
	}
	if !CanModify(actor, recipes[index]) {
		return ErrNotAllowed
	}

	recipes = append(recipes[:index], recipes[index+1:]...)
	if err := s.persist(ctx, opDelete, recipes); err != nil {
		return err
	}

	s.logger.Info("recipe deleted",
		zap.String("recipe_id", id),
		zap.String("actor", actor.Name))
	return nil
}

// Rate records a one-shot score from the actor: owners cannot rate their
// own recipes and nobody rates the same recipe twice. On success the
// running average and count are updated and the id joins the actor's
// rated-set.
func (s *Service) Rate(ctx context.Context, actor users.User, id string, score int) (Recipe, error) {
	if actor.Name == "" {
		return Recipe{}, ErrLoginRequired
	}

	recipes, err := s.ListAll(ctx)
	if err != nil {
		return Recipe{}, err
	}
	index := indexOf(recipes, id)
	if index < 0 {
		return Recipe{}, ErrNotFound
	}
	if recipes[index].Owner == actor.Name {
		return Recipe{}, ErrOwnRecipe
	}

	rated, err := s.ratedSets.Contains(ctx, actor.Name, id)
	if err != nil {
		s.logError(opRate, "rated_set_read_failed", err, zap.String("recipe_id", id))
		return Recipe{}, newServiceError(opRate, "rated_set_read_failed", err)
	}
	if rated {
		return Recipe{}, ErrAlreadyRated
	}
	if score < 1 || score > 5 {
		return Recipe{}, ErrInvalidScore
	}

	updated := recipes[index]
	updated.Rating = (updated.Rating*float64(updated.RatingCount) + float64(score)) / float64(updated.RatingCount+1)
	updated.RatingCount++
	recipes[index] = updated

	if err := s.persist(ctx, opRate, recipes); err != nil {
		return Recipe{}, err
	}
	if err := s.ratedSets.Add(ctx, actor.Name, id); err != nil {
		s.logError(opRate, "rated_set_write_failed", err, zap.String("recipe_id", id))
		return Recipe{}, newServiceError(opRate, "rated_set_write_failed", err)
	}

	s.logger.Info("recipe rated",
		zap.String("recipe_id", id),
		zap.String("actor", actor.Name),
		zap.Int("score", score),
		zap.Float64("rating", updated.Rating),
		zap.Int("count", updated.RatingCount))
	return updated, nil
}

func (s *Service) persist(ctx context.Context, operation string, recipes []Recipe) error {
	if err := s.store.Put(ctx, catalogKey, recipes); err != nil {
		s.logError(operation, "write_failed", err)
		return newServiceError(operation, "write_failed", err)
	}
	return nil
}

func indexOf(recipes []Recipe, id string) int {
	for i, recipe := range recipes {
		if recipe.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("catalog service error", attrs...)
}
