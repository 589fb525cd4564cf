// Package config loads server settings from the environment, reading a
// .env file first when one exists.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Storage. ":memory:" keeps everything in process.
	DBPath string

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Balance cache. An empty RedisURL disables caching.
	RedisURL        string
	BalanceCacheTTL time.Duration

	// Billing
	BillingInterval time.Duration

	// AllowOverpayment is the default for payments larger than the
	// outstanding balance.
	AllowOverpayment bool

	LogLevel string
}

// Load reads configuration from environment variables. Values from
// envFiles (default ".env") are applied first without overriding
// variables already set.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "./data/swisscoin.db"),
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		RedisURL:  getEnv("REDIS_URL", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.JWTExpiresIn, err = getDuration("JWT_EXPIRES_IN", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.BalanceCacheTTL, err = getDuration("BALANCE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BillingInterval, err = getDuration("BILLING_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.AllowOverpayment, err = getBool("ALLOW_OVERPAYMENT", false); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return b, nil
}
