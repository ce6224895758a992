package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNewValidatesBalanceChain(t *testing.T) {
	walletID := uuid.New()

	e, err := New(walletID, TypeDeposit, decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.NewFromInt(15), "USD", "", "")
	if err != nil {
		t.Fatalf("valid deposit rejected: %v", err)
	}
	if e.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", e.Status)
	}
	if e.ID == uuid.Nil {
		t.Fatalf("entry without id")
	}

	if _, err := New(walletID, TypeDeposit, decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.NewFromInt(20), "USD", "", ""); err == nil {
		t.Fatalf("expected error for entry that does not balance")
	}
	if _, err := New(walletID, TypeWithdrawal, decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.NewFromInt(15), "USD", "", ""); err == nil {
		t.Fatalf("withdrawal must subtract, not add")
	}
	if _, err := New(walletID, TypeDeposit, decimal.Zero, decimal.Zero, decimal.Zero, "USD", "", ""); err == nil {
		t.Fatalf("expected error for zero amount")
	}
	if _, err := New(walletID, Type("chargeback"), decimal.NewFromInt(1), decimal.Zero, decimal.NewFromInt(1), "USD", "", ""); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestTypeDirection(t *testing.T) {
	credits := []Type{TypeDeposit, TypeTransferIn, TypeRefund}
	debits := []Type{TypeWithdrawal, TypeTransferOut, TypeFee}

	for _, typ := range credits {
		if !typ.Credits() {
			t.Fatalf("%s should credit the balance", typ)
		}
	}
	for _, typ := range debits {
		if typ.Credits() {
			t.Fatalf("%s should debit the balance", typ)
		}
	}
}

func TestClampPaging(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, DefaultPageSize},
		{-3, -1, 1, DefaultPageSize},
		{2, 50, 2, 50},
		{1, 500, 1, MaxPageSize},
	}
	for _, c := range cases {
		page, size := ClampPaging(c.page, c.size)
		if page != c.wantPage || size != c.wantSize {
			t.Fatalf("ClampPaging(%d, %d) = (%d, %d), want (%d, %d)", c.page, c.size, page, size, c.wantPage, c.wantSize)
		}
	}
}

func seedEntries(t *testing.T, store *MemoryStore, walletID uuid.UUID, n int) {
	t.Helper()
	balance := decimal.Zero
	for i := 0; i < n; i++ {
		next := balance.Add(decimal.NewFromInt(1))
		e, err := New(walletID, TypeDeposit, decimal.NewFromInt(1), balance, next, "USD", "", "")
		if err != nil {
			t.Fatalf("build entry %d: %v", i, err)
		}
		if err := store.Append(context.Background(), e); err != nil {
			t.Fatalf("append entry %d: %v", i, err)
		}
		balance = next
	}
}

func TestMemoryStorePagination(t *testing.T) {
	store := NewMemoryStore()
	walletID := uuid.New()
	other := uuid.New()

	seedEntries(t, store, walletID, 45)
	seedEntries(t, store, other, 3)

	ctx := context.Background()

	total, err := store.CountByWallet(ctx, walletID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 45 {
		t.Fatalf("expected 45 entries, got %d", total)
	}

	sizes := map[int]int{1: 20, 2: 20, 3: 5, 4: 0}
	for page, want := range sizes {
		entries, err := store.ListByWallet(ctx, walletID, page, 20)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(entries) != want {
			t.Fatalf("page %d: expected %d entries, got %d", page, want, len(entries))
		}
		for _, e := range entries {
			if e.WalletID != walletID {
				t.Fatalf("page %d leaked entry for wallet %s", page, e.WalletID)
			}
		}
	}

	// Newest first across page boundaries.
	page1, _ := store.ListByWallet(ctx, walletID, 1, 20)
	page2, _ := store.ListByWallet(ctx, walletID, 2, 20)
	if !page1[0].BalanceAfter.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("expected latest entry first, got balance_after %s", page1[0].BalanceAfter)
	}
	if !page1[len(page1)-1].BalanceBefore.Equal(page2[0].BalanceAfter) {
		t.Fatalf("pages do not chain: %s != %s", page1[len(page1)-1].BalanceBefore, page2[0].BalanceAfter)
	}
}

func TestNewPageEnvelope(t *testing.T) {
	page := NewPage(nil, 2, 20, 45)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.TotalPages)
	}
	if !page.HasPreviousPage || !page.HasNextPage {
		t.Fatalf("middle page flags: prev=%v next=%v", page.HasPreviousPage, page.HasNextPage)
	}

	last := NewPage(nil, 3, 20, 45)
	if last.HasNextPage {
		t.Fatalf("last page must not advertise a next page")
	}

	empty := NewPage(nil, 1, 20, 0)
	if empty.TotalPages != 0 || empty.HasNextPage || empty.HasPreviousPage {
		t.Fatalf("empty envelope: %+v", empty)
	}
}
