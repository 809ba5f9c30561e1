package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the platform health service.
// Environment variables are parsed from the PLATFORM_HEALTH_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Registry Configuration
	RegistryPath string `envconfig:"REGISTRY_PATH" default:"services.yaml"`

	// Probe Configuration
	ProbeTimeoutSeconds int `envconfig:"PROBE_TIMEOUT_SECONDS" default:"5"`
	DegradedThresholdMs int `envconfig:"DEGRADED_THRESHOLD_MS" default:"1000"`

	// Aggregation / Cache Configuration
	AggregateDeadlineSeconds int `envconfig:"AGGREGATE_DEADLINE_SECONDS" default:"30"`
	CacheTTLSeconds          int `envconfig:"CACHE_TTL_SECONDS" default:"15"`

	// Alerting Configuration
	AlertWebhookURL      string `envconfig:"ALERT_WEBHOOK_URL" default:""`
	AlertIntervalSeconds int    `envconfig:"ALERT_INTERVAL_SECONDS" default:"60"`
	AlertCooldownSeconds int    `envconfig:"ALERT_COOLDOWN_SECONDS" default:"300"`
	AlertResetOnRecovery bool   `envconfig:"ALERT_RESET_ON_RECOVERY" default:"false"`
}

// Validate rejects values that would make the service misbehave at runtime.
func (c *Config) Validate() error {
	if c.RegistryPath == "" {
		return fmt.Errorf("registry path is required")
	}
	if c.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %d", c.ProbeTimeoutSeconds)
	}
	if c.DegradedThresholdMs <= 0 {
		return fmt.Errorf("degraded threshold must be positive, got %d", c.DegradedThresholdMs)
	}
	if c.AggregateDeadlineSeconds <= 0 {
		return fmt.Errorf("aggregate deadline must be positive, got %d", c.AggregateDeadlineSeconds)
	}
	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %d", c.CacheTTLSeconds)
	}
	if c.AlertIntervalSeconds <= 0 {
		return fmt.Errorf("alert interval must be positive, got %d", c.AlertIntervalSeconds)
	}
	if c.AlertCooldownSeconds <= 0 {
		return fmt.Errorf("alert cooldown must be positive, got %d", c.AlertCooldownSeconds)
	}
	return nil
}

// New creates a Config by parsing environment variables.
// Variables are prefixed with PLATFORM_HEALTH_, for example
// PLATFORM_HEALTH_HTTP_PORT or PLATFORM_HEALTH_CACHE_TTL_SECONDS.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("PLATFORM_HEALTH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("registry_path", cfg.RegistryPath).
		Int("probe_timeout_s", cfg.ProbeTimeoutSeconds).
		Int("aggregate_deadline_s", cfg.AggregateDeadlineSeconds).
		Int("cache_ttl_s", cfg.CacheTTLSeconds).
		Bool("alerting_enabled", cfg.AlertWebhookURL != "").
		Int("alert_interval_s", cfg.AlertIntervalSeconds).
		Int("alert_cooldown_s", cfg.AlertCooldownSeconds).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:              EnvTesting,
		HTTPPort:                 8080,
		RegistryPath:             "services.yaml",
		ProbeTimeoutSeconds:      5,
		DegradedThresholdMs:      1000,
		AggregateDeadlineSeconds: 30,
		CacheTTLSeconds:          15,
		AlertIntervalSeconds:     60,
		AlertCooldownSeconds:     300,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// ProbeTimeout returns the per-probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// DegradedThreshold returns the soft response-time threshold as a duration.
func (c *Config) DegradedThreshold() time.Duration {
	return time.Duration(c.DegradedThresholdMs) * time.Millisecond
}

// AggregateDeadline returns the overall fan-out deadline as a duration.
func (c *Config) AggregateDeadline() time.Duration {
	return time.Duration(c.AggregateDeadlineSeconds) * time.Second
}

// CacheTTL returns the snapshot time-to-live as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// AlertInterval returns the dispatcher tick interval as a duration.
func (c *Config) AlertInterval() time.Duration {
	return time.Duration(c.AlertIntervalSeconds) * time.Second
}

// AlertCooldown returns the per-service alert cooldown as a duration.
func (c *Config) AlertCooldown() time.Duration {
	return time.Duration(c.AlertCooldownSeconds) * time.Second
}
