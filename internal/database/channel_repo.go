package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lingopost-bot/internal/database/models"
)

// GormChannelRepository implements ChannelRepository on top of Postgres.
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new channel repository.
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

func (r *GormChannelRepository) AddChannel(ctx context.Context, channel *models.Channel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Channel
		err := tx.Where("user_id = ? AND chat_id = ?", channel.UserID, channel.ChatID).
			First(&existing).Error
		if err == nil {
			return ErrDuplicateChannel
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(channel).Error
	})
}

func (r *GormChannelRepository) DeleteChannel(ctx context.Context, userID, chatID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND chat_id = ?", userID, chatID).
		Delete(&models.Channel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormChannelRepository) ListChannels(ctx context.Context, userID int64) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&channels).Error
	return channels, err
}

func (r *GormChannelRepository) FindOwner(ctx context.Context, chatID int64) (int64, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		First(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return channel.UserID, nil
}
