package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

var errInjectedWrite = errors.New("injected write failure")

// stubRepo is a test-only in-memory implementation of repository.Repository.
// Error fields inject failures for the paths under test.
type stubRepo struct {
	markets     map[string]*models.Market
	votes       []models.Vote
	snapshots   []models.MarketSnapshot
	profiles    map[string]*models.Profile
	changes     []models.ScoreChange
	settings    map[string]models.Setting
	suggestions map[uint64]*models.MarketSuggestion

	nextVoteID       uint64
	nextSuggestionID uint64

	errListVotes   error
	errGetSetting  error
	errCountVotes  error
	failVoterWrite string
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		markets:     map[string]*models.Market{},
		profiles:    map[string]*models.Profile{},
		settings:    map[string]models.Setting{},
		suggestions: map[uint64]*models.MarketSuggestion{},
	}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (s *stubRepo) CreateMarket(ctx context.Context, item *models.Market) error {
	cp := *item
	s.markets[item.ID] = &cp
	return nil
}

func (s *stubRepo) GetMarketByID(ctx context.Context, id string) (*models.Market, error) {
	m, ok := s.markets[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (s *stubRepo) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	var out []models.Market
	for _, m := range s.markets {
		if params.Status != nil && m.Status != *params.Status {
			continue
		}
		if params.Category != nil && m.Category != *params.Category {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CountMarkets(ctx context.Context, params repository.ListMarketsParams) (int64, error) {
	items, _ := s.ListMarkets(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) ListOpenMarketIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for _, m := range s.markets {
		if m.Status == models.MarketStatusOpen {
			ids = append(ids, m.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *stubRepo) CloseOverdueMarkets(ctx context.Context, now time.Time) (int64, error) {
	var closed int64
	for _, m := range s.markets {
		if m.Status == models.MarketStatusOpen && !m.CloseTime.After(now) {
			m.Status = models.MarketStatusClosed
			closed++
		}
	}
	return closed, nil
}

func (s *stubRepo) MarkMarketResolved(ctx context.Context, marketID, outcome string, yesPct, noPct *float64) (bool, error) {
	m, ok := s.markets[marketID]
	if !ok {
		return false, nil
	}
	if m.Status != models.MarketStatusOpen && m.Status != models.MarketStatusClosed {
		return false, nil
	}
	m.Status = models.MarketStatusResolved
	m.WinningOutcome = &outcome
	m.FinalYesPct = yesPct
	m.FinalNoPct = noPct
	return true, nil
}

func (s *stubRepo) GetVote(ctx context.Context, marketID, userID string) (*models.Vote, error) {
	for i := range s.votes {
		if s.votes[i].MarketID == marketID && s.votes[i].UserID == userID {
			cp := s.votes[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListVotesByMarket(ctx context.Context, marketID string) ([]models.Vote, error) {
	if s.errListVotes != nil {
		return nil, s.errListVotes
	}
	var out []models.Vote
	for _, v := range s.votes {
		if v.MarketID == marketID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LockTime.Equal(out[j].LockTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].LockTime.Before(out[j].LockTime)
	})
	return out, nil
}

func (s *stubRepo) UpsertVote(ctx context.Context, item *models.Vote) error {
	for i := range s.votes {
		if s.votes[i].MarketID == item.MarketID && s.votes[i].UserID == item.UserID {
			item.ID = s.votes[i].ID
			s.votes[i] = *item
			return nil
		}
	}
	s.nextVoteID++
	item.ID = s.nextVoteID
	s.votes = append(s.votes, *item)
	return nil
}

func (s *stubRepo) DeleteVote(ctx context.Context, marketID, userID string) error {
	for i := range s.votes {
		if s.votes[i].MarketID == marketID && s.votes[i].UserID == userID {
			s.votes = append(s.votes[:i], s.votes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *stubRepo) CountVotes(ctx context.Context, marketID string) (repository.VoteCounts, error) {
	if s.errCountVotes != nil {
		return repository.VoteCounts{}, s.errCountVotes
	}
	var counts repository.VoteCounts
	for _, v := range s.votes {
		if v.MarketID != marketID {
			continue
		}
		if v.Choice == models.OutcomeYes {
			counts.Yes++
		} else {
			counts.No++
		}
	}
	return counts, nil
}

func (s *stubRepo) InsertSnapshot(ctx context.Context, item *models.MarketSnapshot) error {
	cp := *item
	cp.ID = uint64(len(s.snapshots) + 1)
	s.snapshots = append(s.snapshots, cp)
	return nil
}

func (s *stubRepo) ListSnapshotsByMarket(ctx context.Context, marketID string) ([]models.MarketSnapshot, error) {
	var out []models.MarketSnapshot
	for _, snap := range s.snapshots {
		if snap.MarketID == marketID {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *stubRepo) CreateProfile(ctx context.Context, item *models.Profile) error {
	cp := *item
	s.profiles[item.ID] = &cp
	return nil
}

func (s *stubRepo) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	for _, p := range s.profiles {
		if strings.EqualFold(p.Username, username) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListTopProfiles(ctx context.Context, limit int) ([]models.Profile, error) {
	var out []models.Profile
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PredictScore.GreaterThan(out[j].PredictScore)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) GetProfileForUpdateTx(ctx context.Context, tx *gorm.DB, id string) (*models.Profile, error) {
	return s.GetProfileByID(ctx, id)
}

func (s *stubRepo) UpdateProfileScoreTx(ctx context.Context, tx *gorm.DB, id string, score decimal.Decimal) error {
	if s.failVoterWrite != "" && s.failVoterWrite == id {
		return errInjectedWrite
	}
	if p, ok := s.profiles[id]; ok {
		p.PredictScore = score
	}
	return nil
}

func (s *stubRepo) InsertScoreChangeTx(ctx context.Context, tx *gorm.DB, item *models.ScoreChange) error {
	cp := *item
	cp.ID = uint64(len(s.changes) + 1)
	cp.CreatedAt = time.Now().UTC()
	s.changes = append(s.changes, cp)
	return nil
}

func (s *stubRepo) ListScoreChangesByUser(ctx context.Context, userID string, limit int) ([]models.ScoreChange, error) {
	var out []models.ScoreChange
	for i := len(s.changes) - 1; i >= 0; i-- {
		if s.changes[i].UserID == userID {
			out = append(out, s.changes[i])
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepo) ListScoreChangesByMarket(ctx context.Context, marketID string) ([]models.ScoreChange, error) {
	var out []models.ScoreChange
	for _, change := range s.changes {
		if change.MarketID == marketID {
			out = append(out, change)
		}
	}
	return out, nil
}

func (s *stubRepo) GetSettingByKey(ctx context.Context, key string) (*models.Setting, error) {
	if s.errGetSetting != nil {
		return nil, s.errGetSetting
	}
	item, ok := s.settings[key]
	if !ok {
		return nil, nil
	}
	cp := item
	return &cp, nil
}

func (s *stubRepo) UpsertSetting(ctx context.Context, item *models.Setting) error {
	s.settings[item.Key] = *item
	return nil
}

func (s *stubRepo) UpsertSuggestion(ctx context.Context, item *models.MarketSuggestion) error {
	for id, existing := range s.suggestions {
		if existing.ExternalID == item.ExternalID {
			item.ID = id
			item.Status = existing.Status
			s.suggestions[id] = item
			return nil
		}
	}
	s.nextSuggestionID++
	item.ID = s.nextSuggestionID
	cp := *item
	s.suggestions[item.ID] = &cp
	return nil
}

func (s *stubRepo) GetSuggestionByID(ctx context.Context, id uint64) (*models.MarketSuggestion, error) {
	item, ok := s.suggestions[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s *stubRepo) ListSuggestions(ctx context.Context, params repository.ListSuggestionsParams) ([]models.MarketSuggestion, error) {
	var out []models.MarketSuggestion
	for _, item := range s.suggestions {
		if params.Status != nil && item.Status != *params.Status {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) UpdateSuggestionStatus(ctx context.Context, id uint64, status string) error {
	if item, ok := s.suggestions[id]; ok {
		item.Status = status
	}
	return nil
}
