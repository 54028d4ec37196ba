package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	Cron        CronConfig        `mapstructure:"cron"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Suggestions SuggestionsConfig `mapstructure:"suggestions"`
	LiveFeed    LiveFeedConfig    `mapstructure:"live_feed"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Snapshot     string `mapstructure:"snapshot"`
	CloseOverdue string `mapstructure:"close_overdue"`
}

// ScoringConfig holds the hardcoded fallbacks behind the DB-backed settings.
// The DB rows (when present) win; these apply when a row is missing or bad.
type ScoringConfig struct {
	DefaultMinVoters     int `mapstructure:"default_min_voters"`
	DefaultGraphMinVotes int `mapstructure:"default_graph_min_votes"`
}

type SuggestionsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PageLimit    int           `mapstructure:"page_limit"`
}

type LiveFeedConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxPerMarket  int  `mapstructure:"max_per_market"`
	SendBufferLen int  `mapstructure:"send_buffer_len"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PREDICT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.snapshot", "@every 10m")
	v.SetDefault("cron.close_overdue", "@every 1m")
	v.SetDefault("scoring.default_min_voters", 20)
	v.SetDefault("scoring.default_graph_min_votes", 5)
	v.SetDefault("suggestions.enabled", false)
	v.SetDefault("suggestions.base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("suggestions.timeout", "15s")
	v.SetDefault("suggestions.poll_interval", "6h")
	v.SetDefault("suggestions.page_limit", 50)
	v.SetDefault("live_feed.enabled", true)
	v.SetDefault("live_feed.max_per_market", 200)
	v.SetDefault("live_feed.send_buffer_len", 8)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
