package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

// SnapshotService appends immutable sentiment snapshots that drive the
// historical chart. Snapshots are not idempotent and do not need to be:
// repeated calls append repeated rows and the chart renders the series as-is.
type SnapshotService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// SnapshotMarket samples the current vote tally for one market. A market
// with zero votes produces no row at all, not a zero row.
func (s *SnapshotService) SnapshotMarket(ctx context.Context, marketID string) error {
	counts, err := s.Repo.CountVotes(ctx, marketID)
	if err != nil {
		return fmt.Errorf("count votes: %w", err)
	}
	total := counts.Total()
	if total == 0 {
		return nil
	}
	yesPct := float64(counts.Yes) / float64(total) * 100
	return s.Repo.InsertSnapshot(ctx, &models.MarketSnapshot{
		MarketID:     marketID,
		YesPct:       yesPct,
		NoPct:        100 - yesPct,
		SnapshotTime: time.Now().UTC(),
	})
}

// SnapshotOpenMarkets is the cron entry point: it samples every open market.
// A failure on one market is logged and does not stop the rest.
func (s *SnapshotService) SnapshotOpenMarkets(ctx context.Context) error {
	ids, err := s.Repo.ListOpenMarketIDs(ctx)
	if err != nil {
		return fmt.Errorf("list open markets: %w", err)
	}
	var failed int
	for _, id := range ids {
		if err := s.SnapshotMarket(ctx, id); err != nil {
			failed++
			if s.Logger != nil {
				s.Logger.Warn("snapshot failed", zap.String("market_id", id), zap.Error(err))
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("snapshot sweep: %d of %d markets failed", failed, len(ids))
	}
	return nil
}
