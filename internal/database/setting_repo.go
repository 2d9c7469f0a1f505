package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lingopost-bot/internal/database/models"
)

// GormSettingRepository implements SettingRepository on top of Postgres.
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new setting repository.
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

func (r *GormSettingRepository) Get(ctx context.Context, userID int64, key string) (string, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (r *GormSettingRepository) Set(ctx context.Context, userID int64, key, value string) error {
	setting := models.Setting{UserID: userID, Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}
