package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dayplan/internal/model"
)

// SettingRepository is the key-value store used for timer snapshots and
// other per-installation preferences. It satisfies pomodoro.Store.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the value stored under key; the boolean reports presence.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var setting model.Setting
	err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	switch {
	case err == nil:
		return setting.Value, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("read setting: %w", err)
	}
}

// Set stores value under key, replacing any previous value.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	setting := model.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("write setting: %w", err)
	}
	return nil
}

// Remove deletes the value stored under key. Removing an absent key is not
// an error.
func (r *SettingRepository) Remove(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Setting{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}
