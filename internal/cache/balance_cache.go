package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	keyPrefix = "wallet:balance:"

	// DefaultTTL bounds staleness when mutation-driven invalidation is missed.
	DefaultTTL = 15 * time.Minute

	opTimeout = 2 * time.Second
)

// RedisBalanceCache is a read-through cache for wallet balances. It is
// advisory only: every failure is logged and degraded to a miss so an
// unavailable Redis never turns into a request failure, and writes never
// consult it.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisBalanceCache builds a cache with the given default TTL; a
// non-positive TTL falls back to DefaultTTL.
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisBalanceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisBalanceCache{client: client, ttl: ttl, logger: logger}
}

// GetBalance returns the cached balance for the wallet, or a miss.
func (c *RedisBalanceCache) GetBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, key(walletID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("balance cache read failed", slog.String("wallet_id", walletID.String()), slog.Any("error", err))
		}
		return decimal.Zero, false
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		c.logger.Warn("balance cache holds unparsable value", slog.String("wallet_id", walletID.String()), slog.Any("error", err))
		c.RemoveBalance(context.WithoutCancel(ctx), walletID)
		return decimal.Zero, false
	}
	return balance, true
}

// SetBalance overwrites the cached balance. An optional TTL overrides the
// cache default for this entry only.
func (c *RedisBalanceCache) SetBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal, ttl ...time.Duration) {
	exp := c.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		exp = ttl[0]
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key(walletID), balance.String(), exp).Err(); err != nil {
		c.logger.Warn("balance cache write failed", slog.String("wallet_id", walletID.String()), slog.Any("error", err))
	}
}

// RemoveBalance invalidates the cached balance for the wallet.
func (c *RedisBalanceCache) RemoveBalance(ctx context.Context, walletID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, key(walletID)).Err(); err != nil {
		c.logger.Warn("balance cache invalidation failed", slog.String("wallet_id", walletID.String()), slog.Any("error", err))
	}
}

func key(walletID uuid.UUID) string {
	return keyPrefix + walletID.String()
}
