package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScoreChange is the audit row written for every scored voter at resolution
// time: base delta, the time-weight multiplier applied, the accumulated
// switch penalty charged, and the before/after reputation snapshot.
// Append-only ledger; never mutated.
type ScoreChange struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	MarketID    string          `gorm:"type:uuid;not null;index" json:"market_id"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	BaseDelta   decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"base_delta"`
	Multiplier  decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"multiplier"`
	FinalDelta  decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"final_delta"`
	ScoreBefore decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"score_before"`
	ScoreAfter  decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"score_after"`
	CreatedAt   time.Time       `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (ScoreChange) TableName() string {
	return "score_changes"
}
