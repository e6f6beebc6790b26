package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Bundles   BundleConfig
	Sandbox   SandboxConfig
	Store     StoreConfig
	Layouts   LayoutConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8600"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// BundleConfig holds widget bundle provider configuration.
type BundleConfig struct {
	Root         string        `envconfig:"BUNDLE_ROOT" default:"./widgets"`
	RemoteURL    string        `envconfig:"BUNDLE_REMOTE_URL" default:""`
	FetchTimeout time.Duration `envconfig:"BUNDLE_FETCH_TIMEOUT" default:"10s"`
}

// SandboxConfig holds script evaluation limits.
type SandboxConfig struct {
	Timeout      time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"5s"`
	MaxCallStack int           `envconfig:"SANDBOX_MAX_CALL_STACK" default:"1024"`
}

// StoreConfig holds builder state store configuration.
type StoreConfig struct {
	HistoryDepth int `envconfig:"STORE_HISTORY_DEPTH" default:"50"`
}

// LayoutConfig holds persisted layout storage configuration.
type LayoutConfig struct {
	Dir string `envconfig:"LAYOUT_DIR" default:"./data/layouts"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8600",
			Host: "0.0.0.0",
		},
		Bundles: BundleConfig{
			Root:         "./widgets",
			FetchTimeout: 10 * time.Second,
		},
		Sandbox: SandboxConfig{
			Timeout:      5 * time.Second,
			MaxCallStack: 1024,
		},
		Store: StoreConfig{
			HistoryDepth: 50,
		},
		Layouts: LayoutConfig{
			Dir: "./data/layouts",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
