package database

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/plateup-labs/plateup/internal/kvstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	migrationStringifyRecipeIDs = "2026-05-12_stringify_recipe_ids"
	migrationUserRecords        = "2026-05-12_user_records"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationStringifyRecipeIDs, apply: stringifyRecipeIDs},
		{name: migrationUserRecords, apply: expandUserRecords},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// stringifyRecipeIDs rewrites catalog data written by early builds, which
// stored recipe ids as timestamp integers. Ids are strings now; numeric ids
// in the recipes value and in per-user rated-id lists become their decimal
// string form so lookups keep matching.
func stringifyRecipeIDs(db *gorm.DB) error {
	var entries []kvstore.Entry
	if err := db.
		Where("entry_key = ? OR entry_key LIKE ?", "recipes", "ratedByUser_%").
		Find(&entries).Error; err != nil {
		return err
	}

	for _, entry := range entries {
		rewritten, changed, err := rewriteEntryIDs(entry)
		if err != nil {
			// A value this migration cannot decode is already unreadable by
			// the store; leave it for the corrupt-value fallback.
			continue
		}
		if !changed {
			continue
		}
		err = db.Model(&kvstore.Entry{}).
			Where("entry_key = ?", entry.Key).
			Update("value_json", rewritten).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// expandUserRecords upgrades the registry value from a bare list of names
// to records carrying an explicit role. The reserved "admin" name keeps its
// blanket privilege through the admin role.
func expandUserRecords(db *gorm.DB) error {
	var entry kvstore.Entry
	err := db.Where("entry_key = ?", "users").Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var names []string
	if err := json.Unmarshal([]byte(entry.ValueJSON), &names); err != nil {
		// Already records, or unreadable; either way nothing to upgrade.
		return nil
	}

	type userRecord struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	records := make([]userRecord, 0, len(names))
	for _, name := range names {
		role := "member"
		if name == "admin" {
			role = "admin"
		}
		records = append(records, userRecord{Name: name, Role: role})
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return db.Model(&kvstore.Entry{}).
		Where("entry_key = ?", "users").
		Update("value_json", string(payload)).Error
}

func rewriteEntryIDs(entry kvstore.Entry) (string, bool, error) {
	if strings.HasPrefix(entry.Key, "ratedByUser_") {
		var ids []any
		if err := json.Unmarshal([]byte(entry.ValueJSON), &ids); err != nil {
			return "", false, err
		}
		changed := false
		for i, id := range ids {
			if numeric, ok := id.(float64); ok {
				ids[i] = strconv.FormatInt(int64(numeric), 10)
				changed = true
			}
		}
		if !changed {
			return "", false, nil
		}
		payload, err := json.Marshal(ids)
		return string(payload), true, err
	}

	var recipes []map[string]any
	if err := json.Unmarshal([]byte(entry.ValueJSON), &recipes); err != nil {
		return "", false, err
	}
	changed := false
	for _, recipe := range recipes {
		if numeric, ok := recipe["id"].(float64); ok {
			recipe["id"] = strconv.FormatInt(int64(numeric), 10)
			changed = true
		}
	}
	if !changed {
		return "", false, nil
	}
	payload, err := json.Marshal(recipes)
	return string(payload), true, err
}
