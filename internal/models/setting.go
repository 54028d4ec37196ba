package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores runtime-tunable numeric values in the DB. Lookups fail
// soft: a missing or malformed row falls back to a hardcoded default.
type Setting struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Key         string         `gorm:"type:varchar(120);not null;uniqueIndex" json:"key"`
	Value       datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"type:timestamptz;autoUpdateTime;index" json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
