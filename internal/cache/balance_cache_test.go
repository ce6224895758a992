package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nile-pay/nile_pay/internal/logging"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisBalanceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBalanceCache(client, ttl, logging.Discard()), mr
}

func TestBalanceCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	walletID := uuid.New()

	if _, ok := c.GetBalance(ctx, walletID); ok {
		t.Fatalf("expected a miss on an empty cache")
	}

	want := decimal.RequireFromString("1234.56")
	c.SetBalance(ctx, walletID, want)

	got, ok := c.GetBalance(ctx, walletID)
	if !ok {
		t.Fatalf("expected a hit after set")
	}
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}

	c.RemoveBalance(ctx, walletID)
	if _, ok := c.GetBalance(ctx, walletID); ok {
		t.Fatalf("expected a miss after invalidation")
	}
}

func TestBalanceCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t, 15*time.Minute)
	ctx := context.Background()
	walletID := uuid.New()

	c.SetBalance(ctx, walletID, decimal.NewFromInt(10))

	key := "wallet:balance:" + walletID.String()
	ttl := mr.TTL(key)
	if ttl != 15*time.Minute {
		t.Fatalf("expected a 15m TTL, got %s", ttl)
	}

	mr.FastForward(15*time.Minute + time.Second)
	if _, ok := c.GetBalance(ctx, walletID); ok {
		t.Fatalf("expected a miss after expiry")
	}
}

func TestBalanceCachePerEntryTTLOverride(t *testing.T) {
	c, mr := newTestCache(t, 15*time.Minute)
	walletID := uuid.New()

	c.SetBalance(context.Background(), walletID, decimal.NewFromInt(10), time.Minute)

	if ttl := mr.TTL("wallet:balance:" + walletID.String()); ttl != time.Minute {
		t.Fatalf("expected the override TTL, got %s", ttl)
	}
}

func TestBalanceCacheDegradesWhenRedisIsDown(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	walletID := uuid.New()

	c.SetBalance(ctx, walletID, decimal.NewFromInt(10))
	mr.Close()

	// Every operation degrades to a miss or a no-op, never an error.
	if _, ok := c.GetBalance(ctx, walletID); ok {
		t.Fatalf("expected a miss with the backend down")
	}
	c.SetBalance(ctx, walletID, decimal.NewFromInt(20))
	c.RemoveBalance(ctx, walletID)
}

func TestBalanceCacheDropsUnparsableValues(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	walletID := uuid.New()
	key := "wallet:balance:" + walletID.String()

	if err := mr.Set(key, "not-a-number"); err != nil {
		t.Fatalf("seed bad value: %v", err)
	}

	if _, ok := c.GetBalance(context.Background(), walletID); ok {
		t.Fatalf("expected a miss for an unparsable value")
	}
	if mr.Exists(key) {
		t.Fatalf("expected the poisoned key to be evicted")
	}
}
