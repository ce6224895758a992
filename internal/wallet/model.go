package wallet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when a wallet is provisioned without an explicit
// currency code.
const DefaultCurrency = "USD"

// Status is the wallet lifecycle state. The set is closed: anything else read
// from storage is rejected at construction time.
type Status string

const (
	StatusActive Status = "active"
	StatusFrozen Status = "frozen"
	StatusClosed Status = "closed"
)

// Valid reports whether the status is one of the known wallet states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusFrozen, StatusClosed:
		return true
	default:
		return false
	}
}

// ParseStatus converts a stored string into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown wallet status %q", raw)
	}
	return s, nil
}

// Wallet is the balance-bearing aggregate. Exactly one wallet exists per user;
// the balance never goes negative and every change flows through the methods
// below. Version supports optimistic writes.
type Wallet struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   decimal.Decimal
	Currency  string
	Status    Status
	Version   int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// New provisions an active wallet with a zero balance for the given user.
func New(userID uuid.UUID, currency string) Wallet {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.Zero,
		Currency:  currency,
		Status:    StatusActive,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
}

// Credit adds amount to the balance. Only active wallets accept credits.
func (w *Wallet) Credit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if w.Status != StatusActive {
		return w.notActive()
	}
	w.Balance = w.Balance.Add(amount)
	w.touch()
	return nil
}

// Debit subtracts amount from the balance. The balance can never go negative.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if w.Status != StatusActive {
		return w.notActive()
	}
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	w.touch()
	return nil
}

// Freeze suspends an active wallet. Freezing a frozen wallet is a no-op.
func (w *Wallet) Freeze() error {
	if w.Status == StatusClosed {
		return ErrClosed
	}
	w.Status = StatusFrozen
	w.touch()
	return nil
}

// Unfreeze reactivates a frozen wallet.
func (w *Wallet) Unfreeze() error {
	if w.Status == StatusClosed {
		return ErrClosed
	}
	w.Status = StatusActive
	w.touch()
	return nil
}

// Close retires the wallet permanently. The wallet must be active with a zero
// balance: a frozen wallet has to be unfrozen before it can close.
func (w *Wallet) Close() error {
	if w.Status == StatusClosed {
		return ErrClosed
	}
	if w.Status != StatusActive {
		return ErrNotActive
	}
	if !w.Balance.IsZero() {
		return ErrNonZeroBalance
	}
	w.Status = StatusClosed
	w.touch()
	return nil
}

func (w *Wallet) notActive() error {
	if w.Status == StatusClosed {
		return ErrClosed
	}
	return ErrNotActive
}

func (w *Wallet) touch() {
	now := time.Now().UTC()
	w.UpdatedAt = &now
}
