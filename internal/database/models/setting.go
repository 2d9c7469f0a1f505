package models

import "time"

// Well-known setting keys that drive fan-out behavior.
const (
	SettingMainChannelID = "MAIN_CHANNEL_ID"
	SettingAutoTranslate = "AUTO_TRANSLATE_ENABLED"
)

// Setting is a per-user key/value pair. At most one row per (user, key);
// writes go through an upsert.
type Setting struct {
	ID     uint   `gorm:"primaryKey"`
	UserID int64  `gorm:"not null;index;uniqueIndex:idx_settings_user_key"`
	Key    string `gorm:"size:64;not null;uniqueIndex:idx_settings_user_key"`
	Value  string

	CreatedAt time.Time
	UpdatedAt time.Time
}
