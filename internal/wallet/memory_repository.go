package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nile-pay/nile_pay/internal/ledger"
)

// MemoryRepository is a mutex-guarded in-memory repository for tests and
// development mode. It mirrors the Postgres semantics: user uniqueness on Add,
// version checks on Update and an atomic mutate-plus-append in Apply.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]Wallet
	byUser  map[uuid.UUID]uuid.UUID
	entries *ledger.MemoryStore
}

// NewMemoryRepository constructs an in-memory repository. Entries produced by
// Apply are appended to the given store, which may be shared with the reader
// side of a test.
func NewMemoryRepository(entries *ledger.MemoryStore) *MemoryRepository {
	if entries == nil {
		entries = ledger.NewMemoryStore()
	}
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]Wallet),
		byUser:  make(map[uuid.UUID]uuid.UUID),
		entries: entries,
	}
}

// Entries exposes the backing ledger store.
func (r *MemoryRepository) Entries() *ledger.MemoryStore {
	return r.entries
}

// Add inserts a wallet, enforcing one wallet per user.
func (r *MemoryRepository) Add(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUser[w.UserID]; exists {
		return fmt.Errorf("wallet for user %s: %w", w.UserID, ErrConflict)
	}
	if _, exists := r.byID[w.ID]; exists {
		return fmt.Errorf("wallet %s: %w", w.ID, ErrConflict)
	}
	r.byID[w.ID] = w
	r.byUser[w.UserID] = w.ID
	return nil
}

// GetByID fetches a wallet by its identifier.
func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byID[id]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

// GetByUserID fetches the single wallet owned by a user.
func (r *MemoryRepository) GetByUserID(_ context.Context, userID uuid.UUID) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byUser[userID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return r.byID[id], nil
}

// ExistsForUser reports whether the user already owns a wallet.
func (r *MemoryRepository) ExistsForUser(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byUser[userID]
	return ok, nil
}

// Update replaces stored state when the caller's version is still current.
func (r *MemoryRepository) Update(_ context.Context, w Wallet) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[w.ID]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	if stored.Version != w.Version {
		return Wallet{}, fmt.Errorf("wallet %s version %d: %w", w.ID, w.Version, ErrConflict)
	}
	w.Version++
	r.byID[w.ID] = w
	return w, nil
}

// Apply runs the mutation and the ledger append under the repository lock.
func (r *MemoryRepository) Apply(ctx context.Context, id uuid.UUID, fn MutateFunc) (Wallet, *ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[id]
	if !ok {
		return Wallet{}, nil, ErrNotFound
	}

	w := stored
	entry, err := fn(&w)
	if err != nil {
		return Wallet{}, nil, err
	}

	w.Version++
	r.byID[id] = w
	if entry != nil {
		if err := r.entries.Append(ctx, *entry); err != nil {
			return Wallet{}, nil, err
		}
	}
	return w, entry, nil
}
