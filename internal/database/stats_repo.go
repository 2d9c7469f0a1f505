package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lingopost-bot/internal/database/models"
)

// GormStatsRepository implements StatsRepository on top of Postgres.
type GormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a new statistics repository.
func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

func (r *GormStatsRepository) Get(ctx context.Context, userID int64) (*models.Statistic, error) {
	var stat models.Statistic
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.Statistic{UserID: userID}
		if err := r.db.WithContext(ctx).Create(&stat).Error; err != nil {
			return nil, err
		}
		return &stat, nil
	}
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (r *GormStatsRepository) Increment(ctx context.Context, userID int64, messages, words, chars int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stat models.Statistic
		err := tx.Where("user_id = ?", userID).First(&stat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stat = models.Statistic{
				UserID:               userID,
				MessagesSent:         messages,
				WordsTranslated:      words,
				CharactersTranslated: chars,
			}
			return tx.Create(&stat).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&stat).Updates(map[string]interface{}{
			"messages_sent":         gorm.Expr("messages_sent + ?", messages),
			"words_translated":      gorm.Expr("words_translated + ?", words),
			"characters_translated": gorm.Expr("characters_translated + ?", chars),
		}).Error
	})
}
