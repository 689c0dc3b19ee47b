package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigFileEnv names an optional yaml file read before the environment.
const ConfigFileEnv = "CONFIG_FILE"

const DefaultCommentAPIURL = "https://escrowdb.up.railway.app"

// Config holds the settings shared by the CLI and the watchlist engine.
type Config struct {
	LogLevel  string
	LogFormat string

	CommentAPIURL string
	EngineURL     string
	HTTPTimeout   time.Duration
	PollInterval  time.Duration

	// Engine
	Port           string
	DBPath         string
	WatchlistURL   string
	SyncInterval   time.Duration
	RateLimitRPM   float64
	RateLimitBurst int
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("comment_api_url", DefaultCommentAPIURL)
	v.SetDefault("watchlist_engine_url", "http://localhost:8080")
	v.SetDefault("http_timeout", 15*time.Second)
	v.SetDefault("poll_interval", 30*time.Second)
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "./watchlist.db")
	v.SetDefault("watchlist_url", "")
	v.SetDefault("sync_interval", 12*time.Hour)
	v.SetDefault("rate_limit_rpm", 600)
	v.SetDefault("rate_limit_burst", 20)
	v.AutomaticEnv()
	return v
}

// Load reads an optional .env file, an optional CONFIG_FILE and then the
// process environment, which wins over both.
func Load() (*Config, error) {
	// A missing .env is fine; docker compose injects the variables directly.
	_ = godotenv.Load()

	v := newViper()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		CommentAPIURL:  v.GetString("comment_api_url"),
		EngineURL:      v.GetString("watchlist_engine_url"),
		HTTPTimeout:    v.GetDuration("http_timeout"),
		PollInterval:   v.GetDuration("poll_interval"),
		Port:           v.GetString("port"),
		DBPath:         v.GetString("db_path"),
		WatchlistURL:   v.GetString("watchlist_url"),
		SyncInterval:   v.GetDuration("sync_interval"),
		RateLimitRPM:   v.GetFloat64("rate_limit_rpm"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval must be positive, got %s", c.SyncInterval)
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	return nil
}
