package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies a ledger entry by the direction and nature of the movement.
type Type string

const (
	TypeDeposit     Type = "deposit"
	TypeWithdrawal  Type = "withdrawal"
	TypeTransferIn  Type = "transfer_in"
	TypeTransferOut Type = "transfer_out"
	TypeFee         Type = "fee"
	TypeRefund      Type = "refund"
)

// Valid reports whether the type is one of the known entry types.
func (t Type) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransferIn, TypeTransferOut, TypeFee, TypeRefund:
		return true
	default:
		return false
	}
}

// Credits reports whether the type increases the wallet balance.
func (t Type) Credits() bool {
	switch t {
	case TypeDeposit, TypeTransferIn, TypeRefund:
		return true
	default:
		return false
	}
}

// Status tracks the settlement state of an entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusReversed  Status = "reversed"
)

// Valid reports whether the status is one of the known entry statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusReversed:
		return true
	default:
		return false
	}
}

// Entry is a single immutable record in a wallet's transaction history. The
// balance-before and balance-after fields chain consecutive entries together.
type Entry struct {
	ID            uuid.UUID
	WalletID      uuid.UUID
	Type          Type
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Currency      string
	Description   string
	ReferenceID   string
	Status        Status
	CreatedAt     time.Time
}

// New builds a completed ledger entry for a balance movement. The amount must
// be positive and balanceAfter must equal balanceBefore adjusted by amount
// according to the entry type's sign.
func New(walletID uuid.UUID, typ Type, amount, balanceBefore, balanceAfter decimal.Decimal, currency, description, referenceID string) (Entry, error) {
	if !typ.Valid() {
		return Entry{}, fmt.Errorf("unknown entry type %q", typ)
	}
	if amount.Sign() <= 0 {
		return Entry{}, fmt.Errorf("entry amount must be positive, got %s", amount)
	}

	expected := balanceBefore.Sub(amount)
	if typ.Credits() {
		expected = balanceBefore.Add(amount)
	}
	if !balanceAfter.Equal(expected) {
		return Entry{}, fmt.Errorf("entry does not balance: before %s %s %s != after %s", balanceBefore, typ, amount, balanceAfter)
	}

	return Entry{
		ID:            uuid.New(),
		WalletID:      walletID,
		Type:          typ,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Currency:      currency,
		Description:   description,
		ReferenceID:   referenceID,
		Status:        StatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Store persists ledger entries. There is deliberately no update or delete.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByWallet(ctx context.Context, walletID uuid.UUID, page, pageSize int) ([]Entry, error)
	CountByWallet(ctx context.Context, walletID uuid.UUID) (int64, error)
}
