package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"predictmarket/internal/client/gamma"
	"predictmarket/internal/config"
	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

// SuggestionImportService polls an external market feed for open binary
// questions and stores them as drafts for admin review. Best effort and
// disabled by default: a market that does not look like a clean yes/no
// question is skipped.
type SuggestionImportService struct {
	Repo   repository.Repository
	Feed   *gamma.Client
	Config config.SuggestionsConfig
	Logger *zap.Logger
}

type ImportResult struct {
	Fetched  int `json:"fetched"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (s *SuggestionImportService) RunOnce(ctx context.Context) (ImportResult, error) {
	if s == nil || s.Repo == nil || s.Feed == nil {
		return ImportResult{}, nil
	}
	limit := s.Config.PageLimit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	active := true
	closed := false
	items, err := s.Feed.GetMarkets(ctx, &gamma.GetMarketsParams{
		Limit:  limit,
		Active: &active,
		Closed: &closed,
	})
	if err != nil {
		return ImportResult{}, fmt.Errorf("fetch feed: %w", err)
	}

	result := ImportResult{Fetched: len(items)}
	for _, item := range items {
		suggestion, ok := buildSuggestion(item)
		if !ok {
			result.Skipped++
			continue
		}
		if err := s.Repo.UpsertSuggestion(ctx, suggestion); err != nil {
			return result, fmt.Errorf("save suggestion %s: %w", suggestion.ExternalID, err)
		}
		result.Imported++
	}
	if s.Logger != nil {
		s.Logger.Info("suggestion import done",
			zap.Int("fetched", result.Fetched),
			zap.Int("imported", result.Imported),
			zap.Int("skipped", result.Skipped),
		)
	}
	return result, nil
}

// buildSuggestion filters the feed down to binary questions with a question
// text and a usable external id.
func buildSuggestion(item gamma.Market) (*models.MarketSuggestion, bool) {
	id := strings.TrimSpace(item.ID)
	question := strings.TrimSpace(item.Question)
	if id == "" || question == "" {
		return nil, false
	}
	if !isBinaryOutcomes(item.Outcomes) {
		return nil, false
	}
	suggestion := &models.MarketSuggestion{
		Source:     "polymarket",
		ExternalID: id,
		Question:   question,
		Category:   strings.TrimSpace(item.Category),
		Status:     models.SuggestionStatusPending,
		RawJSON:    datatypes.JSON(item.RawJSON),
	}
	if ts := strings.TrimSpace(item.EndDate); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			utc := parsed.UTC()
			suggestion.EndDate = &utc
		}
	}
	return suggestion, true
}

// isBinaryOutcomes accepts the feed's outcomes field only when it is exactly
// the Yes/No pair. Gamma encodes it as a JSON array serialized into a string.
func isBinaryOutcomes(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	var outcomes []string
	if err := json.Unmarshal([]byte(raw), &outcomes); err != nil {
		return false
	}
	if len(outcomes) != 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(outcomes[0]))
	second := strings.ToLower(strings.TrimSpace(outcomes[1]))
	return (first == "yes" && second == "no") || (first == "no" && second == "yes")
}

// PublishSuggestion turns a pending draft into a real open market.
func (s *SuggestionImportService) PublishSuggestion(ctx context.Context, id uint64, markets *MarketService, closeTime time.Time) (*models.Market, error) {
	suggestion, err := s.Repo.GetSuggestionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load suggestion: %w", err)
	}
	if suggestion == nil {
		return nil, ErrSuggestionMissing
	}
	if suggestion.Status != models.SuggestionStatusPending {
		return nil, fmt.Errorf("suggestion %d is %s, not pending", id, suggestion.Status)
	}
	if closeTime.IsZero() {
		if suggestion.EndDate != nil {
			closeTime = *suggestion.EndDate
		} else {
			closeTime = time.Now().UTC().Add(7 * 24 * time.Hour)
		}
	}
	market, err := markets.CreateMarket(ctx, CreateMarketInput{
		Question:  suggestion.Question,
		Category:  suggestion.Category,
		CloseTime: closeTime,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateSuggestionStatus(ctx, id, models.SuggestionStatusPublished); err != nil {
		return nil, fmt.Errorf("mark suggestion published: %w", err)
	}
	return market, nil
}

func (s *SuggestionImportService) DismissSuggestion(ctx context.Context, id uint64) error {
	suggestion, err := s.Repo.GetSuggestionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load suggestion: %w", err)
	}
	if suggestion == nil {
		return ErrSuggestionMissing
	}
	return s.Repo.UpdateSuggestionStatus(ctx, id, models.SuggestionStatusDismissed)
}
