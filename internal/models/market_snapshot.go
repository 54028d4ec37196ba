package models

import (
	"time"
)

// MarketSnapshot is one immutable point of the sentiment time series.
// Append-only; never updated or deleted.
type MarketSnapshot struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MarketID     string    `gorm:"type:uuid;not null;index" json:"market_id"`
	YesPct       float64   `gorm:"not null" json:"yes_pct"`
	NoPct        float64   `gorm:"not null" json:"no_pct"`
	SnapshotTime time.Time `gorm:"type:timestamptz;not null;autoCreateTime;index" json:"snapshot_time"`
}

func (MarketSnapshot) TableName() string {
	return "market_snapshots"
}
