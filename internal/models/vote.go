package models

import (
	"time"
)

// Vote is the current choice of one user in one market. One row per
// (market, user) — mutated in place on a switch, deleted on retract.
// EntryPct is the crowd percentage of the chosen side at the moment the
// current choice was locked; SwitchPenaltyTotal only ever grows.
type Vote struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MarketID           string    `gorm:"type:uuid;not null;uniqueIndex:uniq_market_user,priority:1;index" json:"market_id"`
	UserID             string    `gorm:"type:uuid;not null;uniqueIndex:uniq_market_user,priority:2" json:"user_id"`
	Choice             string    `gorm:"type:varchar(10);not null" json:"choice"`
	LockTime           time.Time `gorm:"type:timestamptz;not null;index" json:"lock_time"`
	EntryPct           float64   `gorm:"not null" json:"entry_pct"`
	SwitchPenaltyTotal float64   `gorm:"not null;default:0" json:"switch_penalty_total"`
	CreatedAt          time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Vote) TableName() string {
	return "votes"
}
