package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SHUFFLE_COUNT", "")
	t.Setenv("SHUFFLE_INTERVAL_MS", "")
	t.Setenv("INTRO_DELAY_MS", "")
	t.Setenv("APP_PORT", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 5, cfg.ShuffleCount)
	assert.Equal(t, 300*time.Millisecond, cfg.ShuffleInterval)
	assert.Equal(t, 2*time.Second, cfg.IntroDelay)
	assert.Equal(t, time.Hour, cfg.SessionTTL)

	script := cfg.Script()
	assert.Equal(t, 5, script.Count)
	assert.Equal(t, 300*time.Millisecond, script.Interval)
	assert.Equal(t, 2*time.Second, script.IntroDelay)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SHUFFLE_COUNT", "8")
	t.Setenv("SHUFFLE_INTERVAL_MS", "150")
	t.Setenv("INTRO_DELAY_MS", "0")
	t.Setenv("LOG_FORMAT", "json")

	cfg := Load()
	assert.Equal(t, 8, cfg.ShuffleCount)
	assert.Equal(t, 150*time.Millisecond, cfg.ShuffleInterval)
	assert.Equal(t, time.Duration(0), cfg.IntroDelay)
	assert.True(t, cfg.LogJSON)
}

func TestLoadInvalidFallsBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SHUFFLE_COUNT", "zero")
	t.Setenv("SHUFFLE_INTERVAL_MS", "-5")
	t.Setenv("GAME_RATE_LIMIT", "0")

	cfg := Load()
	assert.Equal(t, 5, cfg.ShuffleCount)
	assert.Equal(t, 300*time.Millisecond, cfg.ShuffleInterval)
	assert.Equal(t, 120, cfg.GameRateLimit)
}
