package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SuggestionStatusPending   = "pending"
	SuggestionStatusPublished = "published"
	SuggestionStatusDismissed = "dismissed"
)

// MarketSuggestion is a draft question imported from an external feed.
// An admin reviews drafts and publishes them as real markets.
type MarketSuggestion struct {
	ID         uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Source     string         `gorm:"type:varchar(50);not null;index" json:"source"`
	ExternalID string         `gorm:"type:varchar(100);not null;uniqueIndex" json:"external_id"`
	Question   string         `gorm:"type:text;not null" json:"question"`
	Category   string         `gorm:"type:varchar(80)" json:"category"`
	EndDate    *time.Time     `gorm:"type:timestamptz" json:"end_date"`
	Status     string         `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	RawJSON    datatypes.JSON `gorm:"type:jsonb" json:"raw_json"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (MarketSuggestion) TableName() string {
	return "market_suggestions"
}
