package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/nile-pay/nile_pay/internal/ledger"
)

// MutateFunc applies a domain mutation to the wallet loaded under lock and
// returns the ledger entry to append alongside it, or nil when the change does
// not move money. Returning an error aborts the whole unit of work.
type MutateFunc func(w *Wallet) (*ledger.Entry, error)

// Repository is the single source of truth for wallet state. Cached balances
// are never consulted for write decisions.
type Repository interface {
	// Add inserts a new wallet. ErrConflict when the user already has one.
	Add(ctx context.Context, w Wallet) error

	GetByID(ctx context.Context, id uuid.UUID) (Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (Wallet, error)
	ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error)

	// Update replaces persisted state using an optimistic version check.
	// ErrConflict when another writer got there first. The returned wallet
	// carries the bumped version.
	Update(ctx context.Context, w Wallet) (Wallet, error)

	// Apply runs a read-modify-write under a row lock on the wallet record.
	// The balance change and the ledger append commit in one atomic unit, so
	// a crash can never leave a balance without its history entry.
	Apply(ctx context.Context, id uuid.UUID, fn MutateFunc) (Wallet, *ledger.Entry, error)
}
