package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadBookingConfigDefaults(t *testing.T) {
	cfg := LoadBookingConfig()
	assert.Equal(t, 5*time.Minute, cfg.InUseGrace)
	assert.Equal(t, 2*time.Hour, cfg.SearchWindow)
	assert.True(t, cfg.HideCompleted)
	assert.Equal(t, 50, cfg.Loyalty.RedemptionCost)
	assert.Equal(t, 10, cfg.Loyalty.AwardPoints)
}

func TestLoadBookingConfigOverrides(t *testing.T) {
	t.Setenv("BOOKING_INUSE_GRACE", "10m")
	t.Setenv("BOOKING_HIDE_COMPLETED", "false")
	t.Setenv("LOYALTY_AWARD_POINTS", "25")
	t.Setenv("LOYALTY_REDEMPTION_COST", "0")

	cfg := LoadBookingConfig()
	assert.Equal(t, 10*time.Minute, cfg.InUseGrace)
	assert.False(t, cfg.HideCompleted)
	assert.Equal(t, 25, cfg.Loyalty.AwardPoints)
	assert.Equal(t, 50, cfg.Loyalty.RedemptionCost, "non-positive cost falls back")
}

func TestLoadRateLimitConfigShorthands(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Minute, cfg.RefillInterval)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
	assert.Equal(t, 300*time.Millisecond, cfg.TTL)
}
