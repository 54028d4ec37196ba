package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

// MarketService owns market lifecycle outside resolution: creation, listing,
// the close-overdue sweep, and the chart series consumers read.
type MarketService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

type CreateMarketInput struct {
	Question    string
	Description string
	Category    string
	CloseTime   time.Time
}

func (s *MarketService) CreateMarket(ctx context.Context, input CreateMarketInput) (*models.Market, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}
	if input.CloseTime.IsZero() {
		return nil, fmt.Errorf("close time is required")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "General"
	}
	market := &models.Market{
		ID:          uuid.NewString(),
		Question:    question,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		CloseTime:   input.CloseTime.UTC(),
		Status:      models.MarketStatusOpen,
	}
	if err := s.Repo.CreateMarket(ctx, market); err != nil {
		return nil, fmt.Errorf("create market: %w", err)
	}
	return market, nil
}

// MarketView is a market plus its live tally.
type MarketView struct {
	models.Market
	Votes  int64   `json:"votes"`
	YesPct float64 `json:"yes_pct"`
	NoPct  float64 `json:"no_pct"`
}

func (s *MarketService) GetMarket(ctx context.Context, id string) (*MarketView, error) {
	market, err := s.Repo.GetMarketByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load market: %w", err)
	}
	if market == nil {
		return nil, ErrMarketNotFound
	}
	counts, err := s.Repo.CountVotes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	yesPct, noPct := crowdPercentages(counts)
	return &MarketView{Market: *market, Votes: counts.Total(), YesPct: yesPct, NoPct: noPct}, nil
}

func (s *MarketService) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]MarketView, int64, error) {
	markets, err := s.Repo.ListMarkets(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list markets: %w", err)
	}
	total, err := s.Repo.CountMarkets(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("count markets: %w", err)
	}
	views := make([]MarketView, 0, len(markets))
	for _, m := range markets {
		counts, err := s.Repo.CountVotes(ctx, m.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("count votes: %w", err)
		}
		yesPct, noPct := crowdPercentages(counts)
		views = append(views, MarketView{Market: m, Votes: counts.Total(), YesPct: yesPct, NoPct: noPct})
	}
	return views, total, nil
}

// CloseOverdueMarkets flips every open market whose close time has passed to
// closed. Run by cron and exposed for manual admin sweeps.
func (s *MarketService) CloseOverdueMarkets(ctx context.Context) (int64, error) {
	closed, err := s.Repo.CloseOverdueMarkets(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("close overdue: %w", err)
	}
	if closed > 0 && s.Logger != nil {
		s.Logger.Info("closed overdue markets", zap.Int64("count", closed))
	}
	return closed, nil
}

// SnapshotSeries is the chart payload. Below the reveal threshold the points
// are withheld; when no snapshot exists yet but votes do, a synthetic
// single-point series from live counts stands in (presentation nicety, not
// the snapshotter's concern).
type SnapshotSeries struct {
	Revealed  bool                    `json:"revealed"`
	Votes     int64                   `json:"votes"`
	Needed    int                     `json:"needed,omitempty"`
	Synthetic bool                    `json:"synthetic,omitempty"`
	Points    []models.MarketSnapshot `json:"points"`
}

func (s *MarketService) GetSnapshotSeries(ctx context.Context, marketID string, graphMinVotes int) (*SnapshotSeries, error) {
	market, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load market: %w", err)
	}
	if market == nil {
		return nil, ErrMarketNotFound
	}
	counts, err := s.Repo.CountVotes(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	total := counts.Total()
	if total < int64(graphMinVotes) {
		return &SnapshotSeries{Revealed: false, Votes: total, Needed: graphMinVotes}, nil
	}
	points, err := s.Repo.ListSnapshotsByMarket(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	series := &SnapshotSeries{Revealed: true, Votes: total, Points: points}
	if len(points) == 0 && total > 0 {
		yesPct, noPct := crowdPercentages(counts)
		series.Synthetic = true
		series.Points = []models.MarketSnapshot{{
			MarketID:     marketID,
			YesPct:       yesPct,
			NoPct:        noPct,
			SnapshotTime: time.Now().UTC(),
		}}
	}
	return series, nil
}
