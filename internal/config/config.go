// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Fetch   FetchConfig   `mapstructure:"fetch"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// FetchConfig governs the daily retrieval pipeline.
type FetchConfig struct {
	Categories       []string `mapstructure:"categories"`
	OutputDir        string   `mapstructure:"output_dir"`
	KeepDays         int      `mapstructure:"keep_days"`
	AnchorZone       string   `mapstructure:"anchor_zone"`
	AnchorHour       int      `mapstructure:"anchor_hour"`
	PageSize         int      `mapstructure:"page_size"`
	MaxPages         int      `mapstructure:"max_pages"`
	PageDelaySeconds int      `mapstructure:"page_delay_seconds"`
	UserAgent        string   `mapstructure:"user_agent"`
}

// HTTPConfig configures HTTP client timeout and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxRetries       int `mapstructure:"max_retries"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// StorageConfig selects the optional snapshot mirror backend.
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// ServerConfig controls the bookmark/tag HTTP server.
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARXIVD")
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
	v.SetDefault("fetch.categories", []string{"cs.AI", "cs.CV", "cs.LG", "stat.ML"})
	v.SetDefault("fetch.output_dir", "paper_json")
	v.SetDefault("fetch.keep_days", 5)
	v.SetDefault("fetch.anchor_zone", "America/New_York")
	v.SetDefault("fetch.anchor_hour", 20)
	v.SetDefault("fetch.page_size", 200)
	v.SetDefault("fetch.max_pages", 5)
	v.SetDefault("fetch.page_delay_seconds", 3)
	v.SetDefault("fetch.user_agent", "arxiv-daily/0.2 (+https://github.com/JakeFAU/arxiv-daily)")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 500)
	v.SetDefault("http.backoff_max_ms", 8000)
	v.SetDefault("storage.provider", "noop")
	v.SetDefault("storage.prefix", "snapshots")
	v.SetDefault("server.port", 5055)
	v.SetDefault("server.data_dir", "user_data")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Fetch.Categories) == 0 {
		return fmt.Errorf("fetch.categories must not be empty")
	}
	if c.Fetch.OutputDir == "" {
		return fmt.Errorf("fetch.output_dir must be set")
	}
	if c.Fetch.KeepDays <= 0 {
		return fmt.Errorf("fetch.keep_days must be > 0")
	}
	if _, err := time.LoadLocation(c.Fetch.AnchorZone); err != nil {
		return fmt.Errorf("fetch.anchor_zone %q: %w", c.Fetch.AnchorZone, err)
	}
	if c.Fetch.AnchorHour < 0 || c.Fetch.AnchorHour > 23 {
		return fmt.Errorf("fetch.anchor_hour must be in [0,23]")
	}
	if c.Fetch.PageSize <= 0 {
		return fmt.Errorf("fetch.page_size must be > 0")
	}
	if c.Fetch.MaxPages <= 0 {
		return fmt.Errorf("fetch.max_pages must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Storage.Provider == "gcs" && c.Storage.GCSBucket == "" {
		return fmt.Errorf("storage.gcs_bucket must be set when storage.provider is gcs")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// Location resolves the configured anchor time zone.
func (c FetchConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.AnchorZone)
	if err != nil {
		return nil, fmt.Errorf("load anchor zone %q: %w", c.AnchorZone, err)
	}
	return loc, nil
}

// PageDelay converts the pacing delay config into a duration.
func (c FetchConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelaySeconds) * time.Second
}

// Timeout converts the HTTP timeout config into a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BackoffInitial converts the initial backoff config into a duration.
func (c HTTPConfig) BackoffInitial() time.Duration {
	return time.Duration(c.BackoffInitialMs) * time.Millisecond
}

// BackoffMax converts the backoff ceiling config into a duration.
func (c HTTPConfig) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxMs) * time.Millisecond
}
