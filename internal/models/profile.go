package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile carries a user's running reputation score. The score is an
// unbounded signed accumulator mutated additively at resolution time.
type Profile struct {
	ID           string          `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string          `gorm:"type:varchar(60);not null;uniqueIndex" json:"username"`
	PredictScore decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"predict_score"`
	CreatedAt    time.Time       `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
