package models

import "time"

// User represents a registered bot user. The primary key is the
// Telegram-assigned user ID, not a surrogate.
type User struct {
	UserID      int64  `gorm:"primaryKey;autoIncrement:false"`
	Username    string `gorm:"size:50;not null"`
	PhoneNumber string `gorm:"size:50;not null;default:'unknown'"`
	IsAdmin     bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
