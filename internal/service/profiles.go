package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"predictmarket/internal/models"
	"predictmarket/internal/repository"
)

// ProfileService covers the read side of reputation: profile lookups, the
// leaderboard, and per-user score history. Writes happen in the resolution
// engine only.
type ProfileService struct {
	Repo repository.Repository
}

func (s *ProfileService) CreateProfile(ctx context.Context, username string) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	existing, err := s.Repo.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	profile := &models.Profile{
		ID:           uuid.NewString(),
		Username:     username,
		PredictScore: decimal.Zero,
	}
	if err := s.Repo.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	profile, err := s.Repo.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *ProfileService) Leaderboard(ctx context.Context, limit int) ([]models.Profile, error) {
	return s.Repo.ListTopProfiles(ctx, limit)
}

func (s *ProfileService) ScoreHistory(ctx context.Context, username string, limit int) ([]models.ScoreChange, error) {
	profile, err := s.Repo.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return s.Repo.ListScoreChangesByUser(ctx, profile.ID, limit)
}
