package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, 24*time.Hour, cfg.JWT.VerificationExpiry)
	assert.Equal(t, time.Hour, cfg.JWT.PasswordResetExpiry)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_EXPIRATION", "5m")
	t.Setenv("JWT_REFRESH_EXPIRATION", "14d")
	t.Setenv("FRONT_APP_HOST", "app.peditrack.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 14*24*time.Hour, cfg.JWT.RefreshExpiry)
	assert.Equal(t, "https://app.peditrack.example", cfg.App.FrontendURL)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("JWT_RESET_EXPIRATION", "sometime")

	_, err := Load()
	require.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"24h", 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"30s", 30 * time.Second},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	_, err := ParseDuration("xd")
	assert.Error(t, err)
}
