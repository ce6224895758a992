package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a concurrency-safe in-memory ledger store for tests and
// development mode. Entries are held in append order.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records an entry. Existing entries are never touched.
func (s *MemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// ListByWallet returns one history page for a wallet, newest first. Entries
// appended later win ties on creation time, mirroring the Postgres ordering.
func (s *MemoryStore) ListByWallet(_ context.Context, walletID uuid.UUID, page, pageSize int) ([]Entry, error) {
	page, pageSize = ClampPaging(page, pageSize)
	offset := (page - 1) * pageSize

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Entry, 0, pageSize)
	skipped := 0
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].WalletID != walletID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		matched = append(matched, s.entries[i])
		if len(matched) == pageSize {
			break
		}
	}
	return matched, nil
}

// CountByWallet returns the total number of entries recorded for a wallet.
func (s *MemoryStore) CountByWallet(_ context.Context, walletID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, e := range s.entries {
		if e.WalletID == walletID {
			count++
		}
	}
	return count, nil
}
