package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

// MarketObserver is notified after every vote mutation so live consumers
// (the websocket feed) can push fresh percentages. Replaces the old
// browser-event refresh with an explicit contract.
type MarketObserver interface {
	MarketUpdated(marketID string, yesPct, noPct float64, total int64)
}

// VoteService owns the vote-entry flow: one current-vote row per
// (market, user), switch-penalty bookkeeping, and retraction.
type VoteService struct {
	Repo     repository.Repository
	Logger   *zap.Logger
	Observer MarketObserver
}

type CastVoteResult struct {
	Retracted          bool    `json:"retracted"`
	Choice             string  `json:"choice,omitempty"`
	EntryPct           float64 `json:"entry_pct"`
	SwitchPenaltyTotal float64 `json:"switch_penalty_total"`
	PendingPenalty     float64 `json:"pending_penalty"`
}

// CastVote records or changes a user's choice. Re-selecting the current
// choice is an explicit retract: the row is removed with no penalty. A real
// switch from side A to side B charges max(0, entryPct(A) - livePct(A)) on
// top of the accumulated penalty — the voter pays only if the abandoned side
// lost ground since they entered it.
func (s *VoteService) CastVote(ctx context.Context, marketID, userID, choice string) (CastVoteResult, error) {
	if !models.ValidOutcome(choice) {
		return CastVoteResult{}, ErrInvalidChoice
	}
	market, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return CastVoteResult{}, fmt.Errorf("load market: %w", err)
	}
	if market == nil {
		return CastVoteResult{}, ErrMarketNotFound
	}
	if market.Status != models.MarketStatusOpen {
		return CastVoteResult{}, ErrMarketNotOpen
	}

	existing, err := s.Repo.GetVote(ctx, marketID, userID)
	if err != nil {
		return CastVoteResult{}, fmt.Errorf("load vote: %w", err)
	}

	if existing != nil && existing.Choice == choice {
		if err := s.Repo.DeleteVote(ctx, marketID, userID); err != nil {
			return CastVoteResult{}, fmt.Errorf("retract vote: %w", err)
		}
		s.notify(ctx, marketID)
		return CastVoteResult{Retracted: true}, nil
	}

	counts, err := s.Repo.CountVotes(ctx, marketID)
	if err != nil {
		return CastVoteResult{}, fmt.Errorf("count votes: %w", err)
	}
	yesPct, noPct := crowdPercentages(counts)

	livePct := func(side string) float64 {
		if side == models.OutcomeYes {
			return yesPct
		}
		return noPct
	}

	vote := &models.Vote{
		MarketID:           marketID,
		UserID:             userID,
		Choice:             choice,
		LockTime:           time.Now().UTC(),
		EntryPct:           livePct(choice),
		SwitchPenaltyTotal: 0,
	}

	var pendingPenalty float64
	if existing != nil {
		prevExitPct := livePct(existing.Choice)
		prevEntryPct := existing.EntryPct
		pendingPenalty = prevEntryPct - prevExitPct
		if pendingPenalty < 0 {
			pendingPenalty = 0
		}
		vote.ID = existing.ID
		vote.SwitchPenaltyTotal = existing.SwitchPenaltyTotal + pendingPenalty
	}

	if err := s.Repo.UpsertVote(ctx, vote); err != nil {
		return CastVoteResult{}, fmt.Errorf("save vote: %w", err)
	}
	s.notify(ctx, marketID)

	return CastVoteResult{
		Choice:             vote.Choice,
		EntryPct:           vote.EntryPct,
		SwitchPenaltyTotal: vote.SwitchPenaltyTotal,
		PendingPenalty:     pendingPenalty,
	}, nil
}

// RetractVote removes the user's current vote. No penalty; the voter simply
// leaves the market's tally.
func (s *VoteService) RetractVote(ctx context.Context, marketID, userID string) error {
	existing, err := s.Repo.GetVote(ctx, marketID, userID)
	if err != nil {
		return fmt.Errorf("load vote: %w", err)
	}
	if existing == nil {
		return ErrVoteNotFound
	}
	market, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return fmt.Errorf("load market: %w", err)
	}
	if market == nil {
		return ErrMarketNotFound
	}
	if market.Status != models.MarketStatusOpen {
		return ErrMarketNotOpen
	}
	if err := s.Repo.DeleteVote(ctx, marketID, userID); err != nil {
		return fmt.Errorf("retract vote: %w", err)
	}
	s.notify(ctx, marketID)
	return nil
}

func (s *VoteService) GetVote(ctx context.Context, marketID, userID string) (*models.Vote, error) {
	return s.Repo.GetVote(ctx, marketID, userID)
}

func (s *VoteService) notify(ctx context.Context, marketID string) {
	if s.Observer == nil {
		return
	}
	counts, err := s.Repo.CountVotes(ctx, marketID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("live feed count failed", zap.String("market_id", marketID), zap.Error(err))
		}
		return
	}
	yesPct, noPct := crowdPercentages(counts)
	s.Observer.MarketUpdated(marketID, yesPct, noPct, counts.Total())
}

// crowdPercentages divides with the total clamped to >= 1 so an empty market
// reads as 0/0 rather than NaN.
func crowdPercentages(counts repository.VoteCounts) (yesPct, noPct float64) {
	total := counts.Total()
	if total < 1 {
		total = 1
	}
	yesPct = float64(counts.Yes) / float64(total) * 100
	noPct = float64(counts.No) / float64(total) * 100
	return yesPct, noPct
}
