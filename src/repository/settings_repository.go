package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"charttrader/src/database"
	"charttrader/src/model"
)

// SettingsRepository persists plain JSON blobs under well-known keys.
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new repository instance.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *SettingsRepository) WithDB(db *gorm.DB) *SettingsRepository {
	r.db = db
	return r
}

// GetJSON loads and unmarshals the blob stored under key. The second
// return is false when no row exists.
func (r *SettingsRepository) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	var row model.Setting
	err := r.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load setting %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(row.Value), out); err != nil {
		return false, fmt.Errorf("decode setting %q: %w", key, err)
	}
	return true, nil
}

// PutJSON marshals v and upserts it under key.
func (r *SettingsRepository) PutJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}

	logger.WithField("key", key).Debug("Persisting setting")

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.Setting{Key: key, Value: string(raw)}).Error
}
