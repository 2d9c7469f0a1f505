// Package directory resolves channel ownership and per-owner routing
// configuration for the fan-out pipeline.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"lingopost-bot/internal/database"
	"lingopost-bot/internal/database/models"
)

// Directory answers routing questions over the channel and setting stores.
type Directory struct {
	channels database.ChannelRepository
	settings database.SettingRepository
}

// New creates a Directory over the given repositories.
func New(channels database.ChannelRepository, settings database.SettingRepository) *Directory {
	return &Directory{channels: channels, settings: settings}
}

// ResolveOwner returns the ID of the user who registered the given chat, or
// database.ErrNotFound when no one has.
func (d *Directory) ResolveOwner(ctx context.Context, chatID int64) (int64, error) {
	return d.channels.FindOwner(ctx, chatID)
}

// MainChannelID returns the owner's configured main channel, or
// database.ErrNotFound when the setting is absent or unset.
func (d *Directory) MainChannelID(ctx context.Context, userID int64) (int64, error) {
	value, err := d.settings.Get(ctx, userID, models.SettingMainChannelID)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, database.ErrNotFound
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("main channel setting for user %d is not a chat ID: %w", userID, err)
	}
	return id, nil
}

// AutoTranslateEnabled reports whether the owner has mirroring switched on.
// An absent setting counts as disabled.
func (d *Directory) AutoTranslateEnabled(ctx context.Context, userID int64) (bool, error) {
	value, err := d.settings.Get(ctx, userID, models.SettingAutoTranslate)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return value == "1", nil
}

// ListDestinations returns the owner's channels excluding the given chat,
// preserving registration order.
func (d *Directory) ListDestinations(ctx context.Context, userID int64, excludeChatID int64) ([]models.Channel, error) {
	channels, err := d.channels.ListChannels(ctx, userID)
	if err != nil {
		return nil, err
	}
	destinations := make([]models.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch.ChatID == excludeChatID {
			continue
		}
		destinations = append(destinations, ch)
	}
	return destinations, nil
}
