package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("TIER_TIMEOUT", "")
	t.Setenv("MOCK_MODE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.Client.TierTimeout)
	assert.False(t, cfg.MockMode)
	assert.Equal(t, "file", cfg.Client.CacheBackend)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("TIER_TIMEOUT", "250ms")
	t.Setenv("MOCK_MODE", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ENV", "production")

	cfg := Load()

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.TierTimeout)
	assert.True(t, cfg.MockMode)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("TIER_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.Client.TierTimeout)
}
