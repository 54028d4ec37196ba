package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Markets -----------------------------------------------------------------

func (s *Store) CreateMarket(ctx context.Context, item *models.Market) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetMarketByID(ctx context.Context, id string) (*models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Market
	err := s.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(id)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.filterMarkets(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Market
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountMarkets(ctx context.Context, params repository.ListMarketsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.filterMarkets(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) filterMarkets(ctx context.Context, params repository.ListMarketsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Market{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Category != nil && strings.TrimSpace(*params.Category) != "" {
		query = query.Where("category = ?", strings.TrimSpace(*params.Category))
	}
	return query
}

func (s *Store) ListOpenMarketIDs(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("status = ?", models.MarketStatusOpen).
		Order("created_at asc").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) CloseOverdueMarkets(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("status = ?", models.MarketStatusOpen).
		Where("close_time <= ?", now).
		Updates(map[string]any{"status": models.MarketStatusClosed, "updated_at": now})
	return res.RowsAffected, res.Error
}

func (s *Store) MarkMarketResolved(ctx context.Context, marketID, outcome string, yesPct, noPct *float64) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("id = ?", strings.TrimSpace(marketID)).
		Where("status IN ?", []string{models.MarketStatusOpen, models.MarketStatusClosed}).
		Updates(map[string]any{
			"status":          models.MarketStatusResolved,
			"winning_outcome": outcome,
			"final_yes_pct":   yesPct,
			"final_no_pct":    noPct,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// --- Vote ledger -------------------------------------------------------------

func (s *Store) GetVote(ctx context.Context, marketID, userID string) (*models.Vote, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Vote
	err := s.db.WithContext(ctx).
		Where("market_id = ?", strings.TrimSpace(marketID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListVotesByMarket(ctx context.Context, marketID string) ([]models.Vote, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Vote
	err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("market_id = ?", strings.TrimSpace(marketID)).
		Order("lock_time asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertVote(ctx context.Context, item *models.Vote) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "market_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"choice",
			"lock_time",
			"entry_pct",
			"switch_penalty_total",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) DeleteVote(ctx context.Context, marketID, userID string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("market_id = ?", strings.TrimSpace(marketID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Delete(&models.Vote{}).Error
}

func (s *Store) CountVotes(ctx context.Context, marketID string) (repository.VoteCounts, error) {
	if s == nil || s.db == nil {
		return repository.VoteCounts{}, nil
	}
	type row struct {
		Choice string
		N      int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("choice, COUNT(*) AS n").
		Where("market_id = ?", strings.TrimSpace(marketID)).
		Group("choice").
		Scan(&rows).Error
	if err != nil {
		return repository.VoteCounts{}, err
	}
	var counts repository.VoteCounts
	for _, r := range rows {
		switch r.Choice {
		case models.OutcomeYes:
			counts.Yes = r.N
		case models.OutcomeNo:
			counts.No = r.N
		}
	}
	return counts, nil
}

// --- Sentiment snapshots -----------------------------------------------------

func (s *Store) InsertSnapshot(ctx context.Context, item *models.MarketSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListSnapshotsByMarket(ctx context.Context, marketID string) ([]models.MarketSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.MarketSnapshot
	err := s.db.WithContext(ctx).
		Model(&models.MarketSnapshot{}).
		Where("market_id = ?", strings.TrimSpace(marketID)).
		Order("snapshot_time asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Profiles and score changes ----------------------------------------------

func (s *Store) CreateProfile(ctx context.Context, item *models.Profile) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(id)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Profile
	err := s.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username)).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTopProfiles(ctx context.Context, limit int) ([]models.Profile, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	var items []models.Profile
	err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Order("predict_score desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetProfileForUpdateTx(ctx context.Context, tx *gorm.DB, id string) (*models.Profile, error) {
	if tx == nil {
		return nil, nil
	}
	var item models.Profile
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", strings.TrimSpace(id)).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateProfileScoreTx(ctx context.Context, tx *gorm.DB, id string, score decimal.Decimal) error {
	if tx == nil {
		return nil
	}
	return tx.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", strings.TrimSpace(id)).
		Updates(map[string]any{"predict_score": score, "updated_at": time.Now().UTC()}).Error
}

func (s *Store) InsertScoreChangeTx(ctx context.Context, tx *gorm.DB, item *models.ScoreChange) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) ListScoreChangesByUser(ctx context.Context, userID string, limit int) ([]models.ScoreChange, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 20)
	var items []models.ScoreChange
	err := s.db.WithContext(ctx).
		Model(&models.ScoreChange{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListScoreChangesByMarket(ctx context.Context, marketID string) ([]models.ScoreChange, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ScoreChange
	err := s.db.WithContext(ctx).
		Model(&models.ScoreChange{}).
		Where("market_id = ?", strings.TrimSpace(marketID)).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Settings ------------------------------------------------------------------

func (s *Store) GetSettingByKey(ctx context.Context, key string) (*models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", strings.TrimSpace(key)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertSetting(ctx context.Context, item *models.Setting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Key) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

// --- Market suggestions --------------------------------------------------------

func (s *Store) UpsertSuggestion(ctx context.Context, item *models.MarketSuggestion) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.ExternalID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"question",
			"category",
			"end_date",
			"raw_json",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSuggestionByID(ctx context.Context, id uint64) (*models.MarketSuggestion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.MarketSuggestion
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSuggestions(ctx context.Context, params repository.ListSuggestionsParams) ([]models.MarketSuggestion, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.MarketSuggestion{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.MarketSuggestion
	err := query.Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateSuggestionStatus(ctx context.Context, id uint64, status string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.MarketSuggestion{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

// --- helpers -------------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
