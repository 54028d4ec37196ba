package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

// ResolutionService scores a market once its outcome is declared. It is
// invoked by an external trigger (admin action); the atomic status guard in
// MarkMarketResolved rejects a duplicate invocation instead of double-scoring.
type ResolutionService struct {
	Repo     repository.Repository
	Settings *SettingsService
	Logger   *zap.Logger
}

type ResolveResult struct {
	Scored bool    `json:"scored"`
	Reason string  `json:"reason,omitempty"`
	Voters int     `json:"voters,omitempty"`
	YesPct float64 `json:"yes_pct,omitempty"`
	NoPct  float64 `json:"no_pct,omitempty"`
}

const reasonNotEnoughVoters = "not_enough_voters"

// ResolveMarket computes final percentages and per-voter reputation deltas
// for a declared outcome. The outcome is validated at the HTTP boundary; the
// engine assumes yes/no.
//
// The vote ledger is read before any write, so a read failure aborts with
// the market untouched. Per-voter updates are each their own transaction
// (reputation write + audit insert as one unit); a failure partway leaves
// earlier voters committed — resolution is deliberately not transactional
// across voters.
func (s *ResolutionService) ResolveMarket(ctx context.Context, marketID, outcome string) (ResolveResult, error) {
	market, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("load market: %w", err)
	}
	if market == nil {
		return ResolveResult{}, ErrMarketNotFound
	}
	if market.Status == models.MarketStatusResolved {
		return ResolveResult{}, ErrAlreadyResolved
	}

	minVoters := s.Settings.MinVotersScoring(ctx)

	// Position is defined by lock-time order, 1-indexed. This read is the
	// snapshot of the ledger for the whole run: votes arriving later are
	// ignored for this resolution.
	votes, err := s.Repo.ListVotesByMarket(ctx, marketID)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("load votes: %w", err)
	}

	total := len(votes)
	if total < minVoters {
		// Terminal success: resolved but unscored. NULL percentages signal
		// "no points awarded" to every consumer.
		ok, err := s.Repo.MarkMarketResolved(ctx, marketID, outcome, nil, nil)
		if err != nil {
			return ResolveResult{}, fmt.Errorf("resolve market: %w", err)
		}
		if !ok {
			return ResolveResult{}, ErrAlreadyResolved
		}
		if s.Logger != nil {
			s.Logger.Info("market resolved unscored",
				zap.String("market_id", marketID),
				zap.String("outcome", outcome),
				zap.Int("voters", total),
				zap.Int("min_voters", minVoters),
			)
		}
		return ResolveResult{Scored: false, Reason: reasonNotEnoughVoters}, nil
	}

	yesCount := 0
	for _, v := range votes {
		if v.Choice == models.OutcomeYes {
			yesCount++
		}
	}
	yesPct := float64(yesCount) / float64(total) * 100
	noPct := 100 - yesPct

	ok, err := s.Repo.MarkMarketResolved(ctx, marketID, outcome, &yesPct, &noPct)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("resolve market: %w", err)
	}
	if !ok {
		return ResolveResult{}, ErrAlreadyResolved
	}

	for idx, vote := range votes {
		baseDelta := baseDeltaForChoice(outcome, vote.Choice, yesPct, noPct)
		multiplier := positionMultiplier(idx+1, total)
		finalDelta := baseDelta*multiplier - vote.SwitchPenaltyTotal

		if err := s.applyVoterDelta(ctx, marketID, vote.UserID, baseDelta, multiplier, finalDelta); err != nil {
			return ResolveResult{}, fmt.Errorf("apply delta for voter %s: %w", vote.UserID, err)
		}
	}

	if s.Logger != nil {
		s.Logger.Info("market resolved",
			zap.String("market_id", marketID),
			zap.String("outcome", outcome),
			zap.Int("voters", total),
			zap.Float64("yes_pct", yesPct),
			zap.Float64("no_pct", noPct),
		)
	}
	return ResolveResult{Scored: true, Voters: total, YesPct: yesPct, NoPct: noPct}, nil
}

// applyVoterDelta commits one voter's reputation write and audit insert as a
// single transaction. A vote row without a matching profile is skipped (the
// vote still counted toward the percentages).
func (s *ResolutionService) applyVoterDelta(ctx context.Context, marketID, userID string, baseDelta, multiplier, finalDelta float64) error {
	return s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		profile, err := s.Repo.GetProfileForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			if s.Logger != nil {
				s.Logger.Warn("vote without profile, skipping delta",
					zap.String("market_id", marketID),
					zap.String("user_id", userID),
				)
			}
			return nil
		}
		before := profile.PredictScore
		after := before.Add(decimal.NewFromFloat(finalDelta))
		if err := s.Repo.UpdateProfileScoreTx(ctx, tx, userID, after); err != nil {
			return err
		}
		return s.Repo.InsertScoreChangeTx(ctx, tx, &models.ScoreChange{
			MarketID:    marketID,
			UserID:      userID,
			BaseDelta:   decimal.NewFromFloat(baseDelta),
			Multiplier:  decimal.NewFromFloat(multiplier),
			FinalDelta:  decimal.NewFromFloat(finalDelta),
			ScoreBefore: before,
			ScoreAfter:  after,
		})
	})
}

// baseDeltaForChoice rewards a correct voter with the losing side's
// percentage and charges a wrong voter their own side's percentage: being
// right against a skeptical crowd pays more, being wrong with a confident
// crowd costs more.
func baseDeltaForChoice(outcome, choice string, yesPct, noPct float64) float64 {
	if outcome == models.OutcomeYes {
		if choice == models.OutcomeYes {
			return noPct
		}
		return -yesPct
	}
	if choice == models.OutcomeNo {
		return yesPct
	}
	return -noPct
}

// positionMultiplier discounts late votes. The percentile is 0-indexed over
// the lock-time ordering: (position-1)/(N-1), with a single voter counting
// as earliest. Earlier votes, cast before crowd consensus forms, carry more
// signal.
func positionMultiplier(position, total int) float64 {
	percentile := 0.0
	if total > 1 {
		percentile = float64(position-1) / float64(total-1)
	}
	switch {
	case percentile <= 0.01:
		return 1.0
	case percentile <= 0.10:
		return 0.9
	case percentile <= 0.50:
		return 0.8
	case percentile <= 0.90:
		return 0.7
	default:
		return 0.5
	}
}
