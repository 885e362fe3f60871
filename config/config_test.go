package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ayushthakur13/cross-platform-job-analytics/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"TOP_SKILLS", "WORKERS", "WINSOR_LOWER", "WINSOR_UPPER", "LOG_LEVEL", "REFERENCE_TIME", "POSTGRES_ENABLED"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, 30, cfg.TopSkills)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0.01, cfg.WinsorLower)
	assert.Equal(t, 0.99, cfg.WinsorUpper)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.PostgresEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TOP_SKILLS", "10")
	t.Setenv("WORKERS", "not-a-number")
	t.Setenv("WINSOR_LOWER", "0.05")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("REFERENCE_TIME", "2024-03-15T10:00:00Z")

	cfg := Load()

	assert.Equal(t, 10, cfg.TopSkills)
	assert.Equal(t, 4, cfg.Workers, "unparsable values fall back to the default")
	assert.Equal(t, 0.05, cfg.WinsorLower)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.PostgresEnabled)
	require.NoError(t, cfg.Validate())

	ref, err := cfg.Reference(time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC), ref.UTC())
}

func validConfig() *Config {
	return &Config{
		CleanedOutputPath:  "out/cleaned.csv",
		FeaturesOutputPath: "out/features.csv",
		TopSkills:          30,
		Workers:            4,
		WinsorLower:        0.01,
		WinsorUpper:        0.99,
		LogLevel:           "info",
		PostgresPort:       "5432",
		PostgresSSLMode:    "disable",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero top skills", func(c *Config) { c.TopSkills = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"lower above upper", func(c *Config) { c.WinsorLower = 0.99; c.WinsorUpper = 0.5 }},
		{"upper above one", func(c *Config) { c.WinsorUpper = 1.5 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad reference time", func(c *Config) { c.ReferenceTime = "yesterday" }},
		{"missing output", func(c *Config) { c.CleanedOutputPath = "" }},
		{"bad port", func(c *Config) { c.PostgresPort = "five" }},
	}

	require.NoError(t, validConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidInput))
		})
	}
}

func TestReferenceDefaultsToNow(t *testing.T) {
	now := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	ref, err := validConfig().Reference(now)
	require.NoError(t, err)
	assert.Equal(t, now, ref)
}

func TestDSN(t *testing.T) {
	c := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "jobs", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=jobs sslmode=disable", c.DSN())
}
