package models

import "time"

// Channel is a translation destination (or source) channel owned by a user.
// A user cannot register the same chat twice: (user_id, chat_id) is unique.
type Channel struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      int64  `gorm:"not null;index;uniqueIndex:idx_channels_user_chat"`
	Name        string `gorm:"size:50;not null"`
	ChatID      int64  `gorm:"not null;uniqueIndex:idx_channels_user_chat"`
	Language    string `gorm:"size:10;not null"`
	Description string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
