package db

import (
	"predictmarket/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Profile{},
		&models.Market{},
		&models.Vote{},
		&models.MarketSnapshot{},
		&models.ScoreChange{},
		&models.Setting{},
		&models.MarketSuggestion{},
	)
}
