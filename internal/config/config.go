// Package config loads and validates mediadex configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	DB      DBConfig      `mapstructure:"db"`
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	OMDB    OMDBConfig    `mapstructure:"omdb"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlConfig governs traversal and listing-fetch behavior.
type CrawlConfig struct {
	UserAgent              string `mapstructure:"user_agent"`
	TimeoutSeconds         int    `mapstructure:"timeout_seconds"`
	ProviderTimeoutSeconds int    `mapstructure:"provider_timeout_seconds"`
	MaxItems               int    `mapstructure:"max_items"`
}

// DBConfig controls access to the ledger database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// TMDBConfig holds credentials and endpoints for the primary metadata
// provider.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
}

// OMDBConfig holds credentials for the poster-only fallback provider. An
// empty API key disables the fallback.
type OMDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// MetricsConfig controls the optional metrics/health HTTP listener. An
// empty address disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDIADEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawl.user_agent", "mediadex-bot/0.1")
	v.SetDefault("crawl.timeout_seconds", 8)
	v.SetDefault("crawl.provider_timeout_seconds", 8)
	v.SetDefault("crawl.max_items", 0)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawl.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawl.timeout_seconds must be > 0")
	}
	if c.Crawl.ProviderTimeoutSeconds <= 0 {
		return fmt.Errorf("crawl.provider_timeout_seconds must be > 0")
	}
	if c.Crawl.MaxItems < 0 {
		return fmt.Errorf("crawl.max_items must be >= 0")
	}
	return nil
}

// RequestTimeout returns the per-request timeout for listing fetches.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Crawl.TimeoutSeconds) * time.Second
}

// ProviderTimeout returns the timeout applied to metadata provider calls.
func (c Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Crawl.ProviderTimeoutSeconds) * time.Second
}
