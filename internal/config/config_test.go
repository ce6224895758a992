package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/wallets")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppName != "NilePay" {
		t.Fatalf("expected default app name, got %q", cfg.AppName)
	}
	if cfg.Port != "8080" || cfg.Address() != ":8080" {
		t.Fatalf("unexpected port config: %q %q", cfg.Port, cfg.Address())
	}
	if cfg.DefaultCurrency != "USD" {
		t.Fatalf("expected USD, got %q", cfg.DefaultCurrency)
	}
	if cfg.BalanceCacheTTL != 15*time.Minute {
		t.Fatalf("expected 15m balance cache TTL, got %s", cfg.BalanceCacheTTL)
	}
	if cfg.UserStream != "users.events" || cfg.WalletStream != "wallets.events" {
		t.Fatalf("unexpected stream names: %q %q", cfg.UserStream, cfg.WalletStream)
	}
	if cfg.ConsumerGroup != "wallet-service" {
		t.Fatalf("unexpected consumer group: %q", cfg.ConsumerGroup)
	}
	if cfg.ConsumerName == "" {
		t.Fatalf("consumer name must never be empty")
	}
}

func TestLoadRequiresBackends(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/wallets")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error without REDIS_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", ":9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("BALANCE_CACHE_TTL", "5m")
	t.Setenv("CONSUMER_NAME", "wallet-2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address() != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.Address())
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected lowered log level, got %q", cfg.LogLevel)
	}
	if cfg.BalanceCacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m TTL, got %s", cfg.BalanceCacheTTL)
	}
	if cfg.ConsumerName != "wallet-2" {
		t.Fatalf("expected wallet-2, got %q", cfg.ConsumerName)
	}
}

func TestLoadRejectsMalformedDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("BALANCE_CACHE_TTL", "fifteen minutes")

	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a malformed duration")
	}
}
