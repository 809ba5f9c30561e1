package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, time.Second, cfg.DegradedThreshold())
	assert.Equal(t, 30*time.Second, cfg.AggregateDeadline())
	assert.Equal(t, 15*time.Second, cfg.CacheTTL())
	assert.Equal(t, time.Minute, cfg.AlertInterval())
	assert.Equal(t, 5*time.Minute, cfg.AlertCooldown())
	assert.False(t, cfg.AlertResetOnRecovery)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("PLATFORM_HEALTH_HTTP_PORT", "9090")
	t.Setenv("PLATFORM_HEALTH_CACHE_TTL_SECONDS", "30")
	t.Setenv("PLATFORM_HEALTH_ALERT_WEBHOOK_URL", "http://sink.internal/alerts")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, "http://sink.internal/alerts", cfg.AlertWebhookURL)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty registry path", func(c *Config) { c.RegistryPath = "" }},
		{"zero probe timeout", func(c *Config) { c.ProbeTimeoutSeconds = 0 }},
		{"zero degraded threshold", func(c *Config) { c.DegradedThresholdMs = 0 }},
		{"zero deadline", func(c *Config) { c.AggregateDeadlineSeconds = 0 }},
		{"negative ttl", func(c *Config) { c.CacheTTLSeconds = -1 }},
		{"zero alert interval", func(c *Config) { c.AlertIntervalSeconds = 0 }},
		{"zero cooldown", func(c *Config) { c.AlertCooldownSeconds = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewForTesting()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := NewForTesting()
	assert.True(t, cfg.IsTesting())
	assert.False(t, cfg.IsProduction())

	cfg.Environment = EnvProduction
	assert.True(t, cfg.IsProduction())
}
