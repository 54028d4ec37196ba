package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"predictmarket/internal/config"
	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

const (
	// SettingMinVotersScoring is the minimum number of voters a market needs
	// for resolution to award points at all.
	SettingMinVotersScoring = "min_voters_scoring"
	// SettingGraphMinVotes is the vote count below which the sentiment chart
	// series is withheld from clients.
	SettingGraphMinVotes = "graph_min_votes"
)

const (
	DefaultMinVotersScoring = 20
	DefaultGraphMinVotes    = 5
)

// SettingsService resolves numeric tunables from the settings table.
// Reads fail soft: a lookup error, a missing row, or a non-numeric value all
// yield the fallback — configured in Defaults, with the hardcoded constants
// behind that. Scoring must never become unresolvable because a configuration
// row is absent.
type SettingsService struct {
	Repo     repository.Repository
	Defaults config.ScoringConfig
}

// MinVotersScoring is the effective minimum voter count for a resolution to
// award points.
func (s *SettingsService) MinVotersScoring(ctx context.Context) int {
	if s == nil {
		return DefaultMinVotersScoring
	}
	fallback := s.Defaults.DefaultMinVoters
	if fallback <= 0 {
		fallback = DefaultMinVotersScoring
	}
	return s.GetInt(ctx, SettingMinVotersScoring, fallback)
}

// GraphMinVotes is the effective vote count required to reveal the chart.
func (s *SettingsService) GraphMinVotes(ctx context.Context) int {
	if s == nil {
		return DefaultGraphMinVotes
	}
	fallback := s.Defaults.DefaultGraphMinVotes
	if fallback <= 0 {
		fallback = DefaultGraphMinVotes
	}
	return s.GetInt(ctx, SettingGraphMinVotes, fallback)
}

func (s *SettingsService) GetInt(ctx context.Context, key string, fallback int) int {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	parsed, ok := parseNumericSetting(item.Value)
	if !ok {
		return fallback
	}
	// A stored negative clamps to 0: the row is present and wins over the
	// fallback, it just cannot go below zero.
	if parsed < 0 {
		return 0
	}
	return parsed
}

func (s *SettingsService) SetInt(ctx context.Context, key string, value int, description string) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	raw, _ := json.Marshal(value)
	now := time.Now().UTC()
	return s.Repo.UpsertSetting(ctx, &models.Setting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// parseNumericSetting accepts both JSON numbers and numeric strings, the two
// shapes the admin UI has historically written.
func parseNumericSetting(raw []byte) (int, bool) {
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return int(asNumber), true
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if parsed, err := strconv.Atoi(strings.TrimSpace(asString)); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
