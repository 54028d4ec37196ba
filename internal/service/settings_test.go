package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"predictmarket/internal/config"
	"predictmarket/internal/models"
)

func TestSettingsGetIntFallsBack(t *testing.T) {
	ctx := context.Background()

	t.Run("missing row", func(t *testing.T) {
		svc := &SettingsService{Repo: newStubRepo()}
		if got := svc.GetInt(ctx, SettingMinVotersScoring, 20); got != 20 {
			t.Fatalf("GetInt = %d, want fallback 20", got)
		}
	})

	t.Run("lookup error", func(t *testing.T) {
		repo := newStubRepo()
		repo.errGetSetting = errors.New("db down")
		svc := &SettingsService{Repo: repo}
		if got := svc.GetInt(ctx, SettingMinVotersScoring, 20); got != 20 {
			t.Fatalf("GetInt = %d, want fallback 20", got)
		}
	})

	t.Run("malformed value", func(t *testing.T) {
		repo := newStubRepo()
		repo.settings[SettingGraphMinVotes] = models.Setting{
			Key:   SettingGraphMinVotes,
			Value: datatypes.JSON([]byte(`{"oops":true}`)),
		}
		svc := &SettingsService{Repo: repo}
		if got := svc.GetInt(ctx, SettingGraphMinVotes, 5); got != 5 {
			t.Fatalf("GetInt = %d, want fallback 5", got)
		}
	})

	t.Run("negative value clamps to zero", func(t *testing.T) {
		repo := newStubRepo()
		repo.settings[SettingMinVotersScoring] = models.Setting{
			Key:   SettingMinVotersScoring,
			Value: datatypes.JSON([]byte(`-3`)),
		}
		svc := &SettingsService{Repo: repo}
		if got := svc.GetInt(ctx, SettingMinVotersScoring, 20); got != 0 {
			t.Fatalf("GetInt = %d, want 0 (stored row wins, clamped)", got)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		var svc *SettingsService
		if got := svc.GetInt(ctx, SettingMinVotersScoring, 20); got != 20 {
			t.Fatalf("GetInt = %d, want fallback 20", got)
		}
	})
}

func TestSettingsGetIntParsesBothShapes(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"json number", `7`, 7},
		{"json float", `7.0`, 7},
		{"numeric string", `"12"`, 12},
		{"padded string", `" 12 "`, 12},
		{"zero", `0`, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			repo := newStubRepo()
			repo.settings["k"] = models.Setting{Key: "k", Value: datatypes.JSON([]byte(c.raw))}
			svc := &SettingsService{Repo: repo}
			if got := svc.GetInt(ctx, "k", 99); got != c.want {
				t.Fatalf("GetInt(%s) = %d, want %d", c.raw, got, c.want)
			}
		})
	}
}

func TestSettingsConfiguredDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("configured defaults win over constants", func(t *testing.T) {
		svc := &SettingsService{
			Repo:     newStubRepo(),
			Defaults: config.ScoringConfig{DefaultMinVoters: 3, DefaultGraphMinVotes: 2},
		}
		if got := svc.MinVotersScoring(ctx); got != 3 {
			t.Fatalf("MinVotersScoring = %d, want configured 3", got)
		}
		if got := svc.GraphMinVotes(ctx); got != 2 {
			t.Fatalf("GraphMinVotes = %d, want configured 2", got)
		}
	})

	t.Run("zero config falls back to constants", func(t *testing.T) {
		svc := &SettingsService{Repo: newStubRepo()}
		if got := svc.MinVotersScoring(ctx); got != DefaultMinVotersScoring {
			t.Fatalf("MinVotersScoring = %d, want %d", got, DefaultMinVotersScoring)
		}
		if got := svc.GraphMinVotes(ctx); got != DefaultGraphMinVotes {
			t.Fatalf("GraphMinVotes = %d, want %d", got, DefaultGraphMinVotes)
		}
	})

	t.Run("stored row wins over configured default", func(t *testing.T) {
		repo := newStubRepo()
		repo.settings[SettingMinVotersScoring] = models.Setting{
			Key:   SettingMinVotersScoring,
			Value: datatypes.JSON([]byte(`7`)),
		}
		svc := &SettingsService{
			Repo:     repo,
			Defaults: config.ScoringConfig{DefaultMinVoters: 3},
		}
		if got := svc.MinVotersScoring(ctx); got != 7 {
			t.Fatalf("MinVotersScoring = %d, want stored 7", got)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		var svc *SettingsService
		if got := svc.MinVotersScoring(ctx); got != DefaultMinVotersScoring {
			t.Fatalf("MinVotersScoring = %d, want %d", got, DefaultMinVotersScoring)
		}
	})
}

func TestSettingsSetIntRoundTrips(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	svc := &SettingsService{Repo: repo}

	if err := svc.SetInt(ctx, SettingGraphMinVotes, 8, "chart reveal threshold"); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	if got := svc.GetInt(ctx, SettingGraphMinVotes, 5); got != 8 {
		t.Fatalf("GetInt after SetInt = %d, want 8", got)
	}
	stored := repo.settings[SettingGraphMinVotes]
	if stored.Description != "chart reveal threshold" {
		t.Fatalf("description = %q", stored.Description)
	}
}
