package models

import "time"

// Statistic holds per-user translation counters. One row per user, created
// lazily on first update and only ever incremented.
type Statistic struct {
	ID                   uint  `gorm:"primaryKey"`
	UserID               int64 `gorm:"not null;uniqueIndex"`
	MessagesSent         int64 `gorm:"not null;default:0"`
	WordsTranslated      int64 `gorm:"not null;default:0"`
	CharactersTranslated int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
