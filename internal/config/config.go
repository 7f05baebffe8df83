package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// API Keys and credentials
	RedditClientID     string
	RedditClientSecret string
	TwitterBearerToken string
	TelegramBotToken   string

	// Fetch limits
	FetchTimeout     time.Duration // per-request upstream fetch budget
	MaxPostFetch     int           // hard cap on posts per analyze request
	DefaultPostLimit int

	// Subreddits searched for token mentions
	Subreddits []string

	// Scoring configuration file (optional, defaults are built in)
	ScoringConfigPath string

	// Trending snapshot refresh
	TrendingRefreshMinutes int
	TrendingPostSample     int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		TwitterBearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
		TelegramBotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),

		FetchTimeout:     time.Duration(getIntEnv("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxPostFetch:     getIntEnv("MAX_POST_FETCH", 200),
		DefaultPostLimit: getIntEnv("DEFAULT_POST_LIMIT", 100),

		Subreddits: getSliceEnv("SUBREDDITS", []string{
			"CryptoCurrency",
			"CryptoMoonShots",
			"SatoshiStreetBets",
			"CryptoMarkets",
			"altcoin",
		}),

		ScoringConfigPath: getEnv("SCORING_CONFIG", ""),

		TrendingRefreshMinutes: getIntEnv("TRENDING_REFRESH_MINUTES", 15),
		TrendingPostSample:     getIntEnv("TRENDING_POST_SAMPLE", 100),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive")
	}

	if c.MaxPostFetch < 10 || c.MaxPostFetch > 1000 {
		return fmt.Errorf("MAX_POST_FETCH must be between 10 and 1000")
	}

	if c.DefaultPostLimit < 1 || c.DefaultPostLimit > c.MaxPostFetch {
		return fmt.Errorf("DEFAULT_POST_LIMIT must be between 1 and MAX_POST_FETCH (%d)", c.MaxPostFetch)
	}

	if c.TrendingRefreshMinutes < 1 {
		return fmt.Errorf("TRENDING_REFRESH_MINUTES must be at least 1")
	}

	if len(c.Subreddits) == 0 {
		return fmt.Errorf("SUBREDDITS must list at least one subreddit")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
