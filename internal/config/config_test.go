package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "JWT_EXPIRES_IN", "REDIS_URL", "BALANCE_CACHE_TTL", "BILLING_INTERVAL", "ALLOW_OVERPAYMENT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.JWTExpiresIn != 24*time.Hour {
		t.Errorf("Expected 24h token lifetime, got %v", cfg.JWTExpiresIn)
	}
	if cfg.BillingInterval != time.Hour {
		t.Errorf("Expected hourly billing, got %v", cfg.BillingInterval)
	}
	if cfg.RedisURL != "" || cfg.AllowOverpayment {
		t.Errorf("Expected cache and overpayment off by default, got %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("BALANCE_CACHE_TTL", "30s")
	t.Setenv("ALLOW_OVERPAYMENT", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBPath != ":memory:" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.BalanceCacheTTL != 30*time.Second {
		t.Errorf("Expected 30s TTL, got %v", cfg.BalanceCacheTTL)
	}
	if !cfg.AllowOverpayment {
		t.Error("Expected overpayment enabled")
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_URL", "")
	os.Unsetenv("REDIS_URL")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("PORT=1111\nREDIS_URL=localhost:6379\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Expected environment to win, got port %s", cfg.Port)
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Errorf("Expected REDIS_URL from file, got %q", cfg.RedisURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"JWT_EXPIRES_IN", "forever"},
		{"BILLING_INTERVAL", "-1m"},
		{"ALLOW_OVERPAYMENT", "maybe"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Errorf("Expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
