package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestLoadDefaultsInDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "dev-secret-change-me", cfg.JWTSecret)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Brokers())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("ORDER_TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("ORDER_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}
