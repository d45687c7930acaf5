package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/eprod")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
		assert.True(t, cfg.Auth.RequireConfirmation)
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	})

	t.Run("requires a database", func(t *testing.T) {
		t.Setenv("DB_DSN", "")

		_, err := Load()
		assert.EqualError(t, err, "DB_DSN is required")
	})

	t.Run("rejects password minimum below six", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/eprod")
		t.Setenv("AUTH_MIN_PASSWORD_LENGTH", "4")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("parses typed values", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/eprod")
		t.Setenv("AUTH_SESSION_TTL", "2h")
		t.Setenv("AUTH_REQUIRE_CONFIRMATION", "false")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
		assert.False(t, cfg.Auth.RequireConfirmation)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	})

	t.Run("falls back on invalid values", func(t *testing.T) {
		t.Setenv("DB_DSN", "postgres://localhost/eprod")
		t.Setenv("REDIS_DB", "not-a-number")
		t.Setenv("AUTH_SESSION_TTL", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Redis.DB)
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
		assert.Equal(t, []string{
			"invalid value for REDIS_DB, using default: 0",
			"invalid value for AUTH_SESSION_TTL, using default: 168h0m0s",
		}, cfg.Warnings)
	})
}

func TestLoadClient(t *testing.T) {
	t.Setenv("EPROD_API_URL", "http://api.example/")
	t.Setenv("EPROD_REQUEST_TIMEOUT", "3s")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://api.example", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.AllowUnconfirmedWrites)
	assert.Empty(t, cfg.Warnings)

	t.Setenv("EPROD_ALLOW_UNCONFIRMED_WRITES", "maybe")
	cfg, err = LoadClient()
	require.NoError(t, err)
	assert.True(t, cfg.AllowUnconfirmedWrites)
	assert.Equal(t, []string{"invalid value for EPROD_ALLOW_UNCONFIRMED_WRITES, using default: true"}, cfg.Warnings)
}
