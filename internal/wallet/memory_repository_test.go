package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nile-pay/nile_pay/internal/ledger"
)

func TestMemoryRepositoryOneWalletPerUser(t *testing.T) {
	repo := NewMemoryRepository(nil)
	ctx := context.Background()
	userID := uuid.New()

	if err := repo.Add(ctx, New(userID, "USD")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := repo.Add(ctx, New(userID, "USD")); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for the second wallet, got %v", err)
	}

	exists, err := repo.ExistsForUser(ctx, userID)
	if err != nil || !exists {
		t.Fatalf("expected wallet to exist: %v %v", exists, err)
	}
	exists, err = repo.ExistsForUser(ctx, uuid.New())
	if err != nil || exists {
		t.Fatalf("expected no wallet for an unknown user: %v %v", exists, err)
	}
}

func TestMemoryRepositoryOptimisticUpdate(t *testing.T) {
	repo := NewMemoryRepository(nil)
	ctx := context.Background()

	w := New(uuid.New(), "USD")
	if err := repo.Add(ctx, w); err != nil {
		t.Fatalf("add: %v", err)
	}

	first := w
	if err := first.Freeze(); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	updated, err := repo.Update(ctx, first)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Version != w.Version+1 {
		t.Fatalf("expected version bump to %d, got %d", w.Version+1, updated.Version)
	}

	// A writer still holding the old version loses.
	stale := w
	if err := stale.Freeze(); err != nil {
		t.Fatalf("freeze stale copy: %v", err)
	}
	if _, err := repo.Update(ctx, stale); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for a stale version, got %v", err)
	}

	if _, err := repo.Update(ctx, New(uuid.New(), "USD")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown wallet, got %v", err)
	}
}

func TestMemoryRepositoryApplyIsAtomic(t *testing.T) {
	repo := NewMemoryRepository(nil)
	ctx := context.Background()

	w := New(uuid.New(), "USD")
	if err := repo.Add(ctx, w); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A failing mutation leaves no trace: no balance change, no entry.
	boom := errors.New("boom")
	if _, _, err := repo.Apply(ctx, w.ID, func(*Wallet) (*ledger.Entry, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected the mutation error, got %v", err)
	}
	stored, err := repo.GetByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Version != w.Version || !stored.Balance.IsZero() {
		t.Fatalf("failed apply mutated state: %+v", stored)
	}
	if total, _ := repo.Entries().CountByWallet(ctx, w.ID); total != 0 {
		t.Fatalf("failed apply appended %d entries", total)
	}

	// A successful mutation persists the wallet and its entry together.
	ten := decimal.NewFromInt(10)
	updated, entry, err := repo.Apply(ctx, w.ID, func(cur *Wallet) (*ledger.Entry, error) {
		before := cur.Balance
		if err := cur.Credit(ten); err != nil {
			return nil, err
		}
		e, err := ledger.New(cur.ID, ledger.TypeDeposit, ten, before, cur.Balance, cur.Currency, "", "")
		if err != nil {
			return nil, err
		}
		return &e, nil
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !updated.Balance.Equal(ten) || entry == nil {
		t.Fatalf("apply lost state: %+v %v", updated, entry)
	}
	if total, _ := repo.Entries().CountByWallet(ctx, w.ID); total != 1 {
		t.Fatalf("expected 1 entry, got %d", total)
	}
}
