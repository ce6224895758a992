package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NopBalanceCache answers every read with a miss and drops writes. Used in
// development mode when Redis is absent.
type NopBalanceCache struct{}

func (NopBalanceCache) GetBalance(context.Context, uuid.UUID) (decimal.Decimal, bool) {
	return decimal.Zero, false
}

func (NopBalanceCache) SetBalance(context.Context, uuid.UUID, decimal.Decimal, ...time.Duration) {}

func (NopBalanceCache) RemoveBalance(context.Context, uuid.UUID) {}
