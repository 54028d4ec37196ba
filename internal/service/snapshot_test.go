package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"predictmarket/internal/models"
)

func TestSnapshotMarketZeroVotes(t *testing.T) {
	repo := newStubRepo()
	seedMarket(repo, "m1", models.MarketStatusOpen)

	svc := &SnapshotService{Repo: repo, Logger: zap.NewNop()}
	if err := svc.SnapshotMarket(context.Background(), "m1"); err != nil {
		t.Fatalf("SnapshotMarket: %v", err)
	}
	if len(repo.snapshots) != 0 {
		t.Fatalf("zero-vote market produced %d snapshots, want none", len(repo.snapshots))
	}
}

func TestSnapshotMarketRecordsTally(t *testing.T) {
	repo := newStubRepo()
	seedMarket(repo, "m1", models.MarketStatusOpen)
	now := time.Now().UTC()
	seedVote(repo, "m1", "u1", models.OutcomeYes, now, 0)
	seedVote(repo, "m1", "u2", models.OutcomeYes, now, 0)
	seedVote(repo, "m1", "u3", models.OutcomeNo, now, 0)

	svc := &SnapshotService{Repo: repo, Logger: zap.NewNop()}
	if err := svc.SnapshotMarket(context.Background(), "m1"); err != nil {
		t.Fatalf("SnapshotMarket: %v", err)
	}
	if len(repo.snapshots) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(repo.snapshots))
	}
	snap := repo.snapshots[0]
	if !approxEq(snap.YesPct, 100.0*2/3) {
		t.Fatalf("yes pct = %.4f", snap.YesPct)
	}
	if !approxEq(snap.YesPct+snap.NoPct, 100) {
		t.Fatalf("snapshot percentages do not sum to 100")
	}
	if snap.SnapshotTime.IsZero() {
		t.Fatalf("snapshot time not set")
	}

	// Snapshots append; a second sweep adds a second row.
	if err := svc.SnapshotMarket(context.Background(), "m1"); err != nil {
		t.Fatalf("second SnapshotMarket: %v", err)
	}
	if len(repo.snapshots) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(repo.snapshots))
	}
}

func TestSnapshotOpenMarketsSweep(t *testing.T) {
	repo := newStubRepo()
	seedMarket(repo, "m1", models.MarketStatusOpen)
	seedMarket(repo, "m2", models.MarketStatusOpen)
	seedMarket(repo, "m3", models.MarketStatusResolved)
	now := time.Now().UTC()
	seedVote(repo, "m1", "u1", models.OutcomeYes, now, 0)
	seedVote(repo, "m2", "u1", models.OutcomeNo, now, 0)
	seedVote(repo, "m3", "u1", models.OutcomeNo, now, 0)

	svc := &SnapshotService{Repo: repo, Logger: zap.NewNop()}
	if err := svc.SnapshotOpenMarkets(context.Background()); err != nil {
		t.Fatalf("SnapshotOpenMarkets: %v", err)
	}
	// Only the two open markets were sampled.
	if len(repo.snapshots) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(repo.snapshots))
	}
	for _, snap := range repo.snapshots {
		if snap.MarketID == "m3" {
			t.Fatalf("resolved market was snapshotted")
		}
	}
}

func TestSnapshotOpenMarketsReportsFailures(t *testing.T) {
	repo := newStubRepo()
	seedMarket(repo, "m1", models.MarketStatusOpen)
	repo.errCountVotes = errors.New("boom")

	svc := &SnapshotService{Repo: repo, Logger: zap.NewNop()}
	if err := svc.SnapshotOpenMarkets(context.Background()); err == nil {
		t.Fatalf("expected aggregated failure")
	}
}
