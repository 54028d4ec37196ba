package models

import (
	"time"
)

const (
	MarketStatusOpen     = "open"
	MarketStatusClosed   = "closed"
	MarketStatusResolved = "resolved"
)

const (
	OutcomeYes = "yes"
	OutcomeNo  = "no"
)

// Market is a single binary question participants vote on.
// Status transitions: open -> closed (time or sweep) -> resolved (engine, once).
// FinalYesPct/FinalNoPct stay NULL on a resolved market that had too few
// voters to score; both are set or both are NULL, never one without the other.
type Market struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	Question       string    `gorm:"type:text;not null" json:"question"`
	Description    string    `gorm:"type:text" json:"description"`
	Category       string    `gorm:"type:varchar(80);index" json:"category"`
	CloseTime      time.Time `gorm:"type:timestamptz;not null;index" json:"close_time"`
	Status         string    `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	WinningOutcome *string   `gorm:"type:varchar(10)" json:"winning_outcome"`
	FinalYesPct    *float64  `json:"final_yes_pct"`
	FinalNoPct     *float64  `json:"final_no_pct"`
	CreatedAt      time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Market) TableName() string {
	return "markets"
}

func ValidOutcome(v string) bool {
	return v == OutcomeYes || v == OutcomeNo
}
