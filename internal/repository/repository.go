package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"predictmarket/internal/models"
)

type ListMarketsParams struct {
	Limit    int
	Offset   int
	Status   *string
	Category *string
	OrderBy  string
	Asc      *bool
}

type ListSuggestionsParams struct {
	Limit  int
	Offset int
	Status *string
}

// VoteCounts are the live per-side tallies for one market.
type VoteCounts struct {
	Yes int64
	No  int64
}

func (c VoteCounts) Total() int64 {
	return c.Yes + c.No
}

// Repository is the persistence boundary for the scoring core and its
// collaborators. The vote ledger's one-row-per-(market,user) invariant is
// enforced here via the unique key, not by callers.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Markets.
	CreateMarket(ctx context.Context, item *models.Market) error
	GetMarketByID(ctx context.Context, id string) (*models.Market, error)
	ListMarkets(ctx context.Context, params ListMarketsParams) ([]models.Market, error)
	CountMarkets(ctx context.Context, params ListMarketsParams) (int64, error)
	ListOpenMarketIDs(ctx context.Context) ([]string, error)
	CloseOverdueMarkets(ctx context.Context, now time.Time) (int64, error)
	// MarkMarketResolved performs the atomic open/closed -> resolved
	// transition and persists the outcome and final percentages in the same
	// statement. It reports false when the market was already resolved (or
	// does not exist), so a duplicate resolution attempt is provably
	// rejected instead of double-scoring.
	MarkMarketResolved(ctx context.Context, marketID, outcome string, yesPct, noPct *float64) (bool, error)

	// Vote ledger.
	GetVote(ctx context.Context, marketID, userID string) (*models.Vote, error)
	ListVotesByMarket(ctx context.Context, marketID string) ([]models.Vote, error)
	UpsertVote(ctx context.Context, item *models.Vote) error
	DeleteVote(ctx context.Context, marketID, userID string) error
	CountVotes(ctx context.Context, marketID string) (VoteCounts, error)

	// Sentiment snapshots (append-only).
	InsertSnapshot(ctx context.Context, item *models.MarketSnapshot) error
	ListSnapshotsByMarket(ctx context.Context, marketID string) ([]models.MarketSnapshot, error)

	// Profiles and the score-change audit ledger. The Tx variants run
	// inside the per-voter transaction opened by the resolution engine.
	CreateProfile(ctx context.Context, item *models.Profile) error
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	ListTopProfiles(ctx context.Context, limit int) ([]models.Profile, error)
	GetProfileForUpdateTx(ctx context.Context, tx *gorm.DB, id string) (*models.Profile, error)
	UpdateProfileScoreTx(ctx context.Context, tx *gorm.DB, id string, score decimal.Decimal) error
	InsertScoreChangeTx(ctx context.Context, tx *gorm.DB, item *models.ScoreChange) error
	ListScoreChangesByUser(ctx context.Context, userID string, limit int) ([]models.ScoreChange, error)
	ListScoreChangesByMarket(ctx context.Context, marketID string) ([]models.ScoreChange, error)

	// Settings.
	GetSettingByKey(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, item *models.Setting) error

	// Market suggestions (imported drafts).
	UpsertSuggestion(ctx context.Context, item *models.MarketSuggestion) error
	GetSuggestionByID(ctx context.Context, id uint64) (*models.MarketSuggestion, error)
	ListSuggestions(ctx context.Context, params ListSuggestionsParams) ([]models.MarketSuggestion, error)
	UpdateSuggestionStatus(ctx context.Context, id uint64, status string) error
}
