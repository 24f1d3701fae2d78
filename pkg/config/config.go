// Package config loads the mindweave server configuration from a YAML
// file with environment-variable fallbacks for deployment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mindweave-dev/mindweave/pkg/retention"
)

// Config represents the application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Retention     RetentionConfig     `yaml:"retention"`
	Observability ObservabilityConfig `yaml:"observability"`
	Guard         GuardConfig         `yaml:"guard"`
}

// StorageConfig selects and parameterizes the session backend
type StorageConfig struct {
	// Backend is "file" or "redis"
	Backend string `yaml:"backend"`

	// Dir is the base directory for the file backend
	Dir string `yaml:"dir"`

	// Redis settings, used when Backend is "redis"
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

// RetentionConfig controls the background session sweeper
type RetentionConfig struct {
	Enabled    bool   `yaml:"enabled"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Schedule   string `yaml:"schedule"` // cron spec
}

// ObservabilityConfig controls the metrics/health HTTP server and tracing
type ObservabilityConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MetricsPort int    `yaml:"metrics_port"`
	Tracing     bool   `yaml:"tracing"`
	ServiceName string `yaml:"service_name"`
}

// GuardConfig bounds tool-call inputs and request rates
type GuardConfig struct {
	MaxContentLength int     `yaml:"max_content_length"`
	MaxTags          int     `yaml:"max_tags"`
	RatePerSecond    float64 `yaml:"rate_per_second"`
	RateBurst        int     `yaml:"rate_burst"`
}

// LoadConfig loads configuration from a YAML file. An empty path yields
// pure defaults plus environment overrides.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Apply defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaultStorageDir()
	}
	if cfg.Storage.RedisAddr == "" {
		cfg.Storage.RedisAddr = "localhost:6379"
	}
	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = "mindweave:"
	}
	if cfg.Retention.MaxAgeDays == 0 {
		cfg.Retention.MaxAgeDays = retention.DefaultMaxAgeDays
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = "0 3 * * *"
	}
	if cfg.Observability.MetricsPort == 0 {
		cfg.Observability.MetricsPort = 9090
	}
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "mindweave"
	}
	if cfg.Guard.MaxContentLength == 0 {
		cfg.Guard.MaxContentLength = 50000
	}
	if cfg.Guard.MaxTags == 0 {
		cfg.Guard.MaxTags = 20
	}
	if cfg.Guard.RatePerSecond == 0 {
		cfg.Guard.RatePerSecond = 25
	}
	if cfg.Guard.RateBurst == 0 {
		cfg.Guard.RateBurst = 50
	}

	// Environment overrides for the knobs a deployment typically sets
	if v := os.Getenv("MINDWEAVE_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("MINDWEAVE_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("MINDWEAVE_REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := os.Getenv("MINDWEAVE_REDIS_PASSWORD"); v != "" {
		cfg.Storage.RedisPassword = v
	}
	if v := os.Getenv("MINDWEAVE_MAX_AGE_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MINDWEAVE_MAX_AGE_DAYS %q: %w", v, err)
		}
		cfg.Retention.MaxAgeDays = days
	}

	return &cfg, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q (want file or redis)", c.Storage.Backend)
	}
	if c.Retention.MaxAgeDays < 0 {
		return fmt.Errorf("retention max_age_days must not be negative")
	}
	if c.Observability.MetricsPort < 0 || c.Observability.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics_port %d", c.Observability.MetricsPort)
	}
	if c.Guard.RatePerSecond <= 0 {
		return fmt.Errorf("rate_per_second must be positive")
	}
	return nil
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mindweave"
	}
	return filepath.Join(home, ".mindweave", "sessions")
}
