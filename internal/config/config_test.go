package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 200, cfg.MaxPostFetch)
	assert.Equal(t, 100, cfg.DefaultPostLimit)
	assert.Equal(t, 15, cfg.TrendingRefreshMinutes)
	assert.NotEmpty(t, cfg.Subreddits)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("MAX_POST_FETCH", "500")
	t.Setenv("SUBREDDITS", "CryptoCurrency,altcoin")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 500, cfg.MaxPostFetch)
	assert.Equal(t, []string{"CryptoCurrency", "altcoin"}, cfg.Subreddits)
}

func TestLoad_RejectsBadLimits(t *testing.T) {
	t.Setenv("MAX_POST_FETCH", "5")

	_, err := Load()
	assert.ErrorContains(t, err, "MAX_POST_FETCH")
}

func TestLoad_RejectsDefaultLimitAboveMax(t *testing.T) {
	t.Setenv("MAX_POST_FETCH", "50")
	t.Setenv("DEFAULT_POST_LIMIT", "100")

	_, err := Load()
	assert.ErrorContains(t, err, "DEFAULT_POST_LIMIT")
}
