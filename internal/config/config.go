package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "NilePay"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultCurrency        = "USD"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultBalanceCacheTTL = 15 * time.Minute
	defaultUserStream      = "users.events"
	defaultWalletStream    = "wallets.events"
	defaultConsumerGroup   = "wallet-service"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	DefaultCurrency string
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	BalanceCacheTTL time.Duration
	UserStream      string
	WalletStream    string
	ConsumerGroup   string
	ConsumerName    string
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", defaultCurrency),
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
		BalanceCacheTTL: defaultBalanceCacheTTL,
		UserStream:      getEnv("USER_EVENTS_STREAM", defaultUserStream),
		WalletStream:    getEnv("WALLET_EVENTS_STREAM", defaultWalletStream),
		ConsumerGroup:   getEnv("CONSUMER_GROUP", defaultConsumerGroup),
		ConsumerName:    getEnv("CONSUMER_NAME", hostnameOrDefault()),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.BalanceCacheTTL, err = durationEnv("BALANCE_CACHE_TTL", cfg.BalanceCacheTTL); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func hostnameOrDefault() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "wallet-consumer"
	}
	return host
}
