package database

import (
	"context"
	"errors"

	"lingopost-bot/internal/database/models"
)

var (
	// ErrNotFound is returned when a queried row does not exist.
	ErrNotFound = errors.New("database: not found")
	// ErrDuplicateChannel is returned when a (user, chat) pair is already registered.
	ErrDuplicateChannel = errors.New("database: channel already registered")
)

// UserRepository defines user data operations.
type UserRepository interface {
	// CreateUser inserts a new user row.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUser returns the user with the given Telegram ID, or ErrNotFound.
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	// SetAdmin flips the admin flag for an existing user, or returns ErrNotFound.
	SetAdmin(ctx context.Context, userID int64) error
	// CountAdmins returns the number of users with the admin flag set.
	CountAdmins(ctx context.Context) (int64, error)
}

// ChannelRepository defines channel data operations.
type ChannelRepository interface {
	// AddChannel inserts a channel, or returns ErrDuplicateChannel for a
	// (user, chat) pair that already exists.
	AddChannel(ctx context.Context, channel *models.Channel) error
	// DeleteChannel removes the user's channel with the given chat ID,
	// or returns ErrNotFound.
	DeleteChannel(ctx context.Context, userID, chatID int64) error
	// ListChannels returns all channels owned by the user.
	ListChannels(ctx context.Context, userID int64) ([]models.Channel, error)
	// FindOwner returns the ID of the user owning the channel with the given
	// chat ID, or ErrNotFound.
	FindOwner(ctx context.Context, chatID int64) (int64, error)
}

// SettingRepository defines per-user setting operations.
type SettingRepository interface {
	// Get returns the setting value for (user, key), or ErrNotFound.
	Get(ctx context.Context, userID int64, key string) (string, error)
	// Set upserts the setting value for (user, key).
	Set(ctx context.Context, userID int64, key, value string) error
}

// StatsRepository defines usage-statistics operations.
type StatsRepository interface {
	// Get returns the user's statistics row, creating a zeroed one if missing.
	Get(ctx context.Context, userID int64) (*models.Statistic, error)
	// Increment adds to the user's counters, creating the row if missing.
	Increment(ctx context.Context, userID int64, messages, words, chars int64) error
}
