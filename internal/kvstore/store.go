// Package kvstore provides the persistent string-keyed value store the
// catalog is built on. Values are serialized as JSON and kept in a single
// SQLite-backed table; callers address whole collections by key.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxKeyLength = 190

var (
	// ErrInvalidKey indicates an empty or oversized storage key.
	ErrInvalidKey = errors.New("kvstore: invalid key")

	noOpLogger = zap.NewNop()
)

// Entry is the persisted row backing one key.
type Entry struct {
	Key              string `gorm:"column:entry_key;primaryKey;size:190;not null"`
	ValueJSON        string `gorm:"column:value_json;type:text;not null"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Entry) TableName() string {
	return "kv_entries"
}

// StoreConfig describes the dependencies required by the store.
type StoreConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Store reads and writes JSON values under string keys.
type Store struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewStore constructs the store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("kvstore: database handle is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Store{db: cfg.Database, clock: clock, logger: logger}, nil
}

// Get unmarshals the value stored under key into dest and reports whether
// the key was present. A missing key leaves dest untouched and returns
// found=false. A value that fails to unmarshal is treated as absent after
// logging, so a corrupt row degrades to the caller's default instead of
// wedging every read.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var entry Entry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kvstore: read %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(entry.ValueJSON), dest); err != nil {
		s.logger.Warn("stored value is not valid JSON, treating as absent",
			zap.String("key", key),
			zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Put serializes value and stores it under key, replacing any prior value.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore: encode %q: %w", key, err)
	}

	entry := Entry{
		Key:              key,
		ValueJSON:        string(payload),
		UpdatedAtSeconds: s.clock().UTC().Unix(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value_json", "updated_at_s"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kvstore: write %q: %w", key, err)
	}
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidKey, maxKeyLength)
	}
	return nil
}
