package wallet

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nile-pay/nile_pay/internal/events"
	"github.com/nile-pay/nile_pay/internal/ledger"
	"github.com/nile-pay/nile_pay/internal/metrics"
)

// BalanceCache is the advisory cache capability injected into the service.
// Implementations must swallow backend failures: a miss is always an
// acceptable answer, and none of these calls may fail a request.
type BalanceCache interface {
	GetBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, bool)
	SetBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal, ttl ...time.Duration)
	RemoveBalance(ctx context.Context, walletID uuid.UUID)
}

// Service exposes the wallet use cases: cached reads, monetary mutations with
// their ledger entries, lifecycle transitions and history queries.
type Service struct {
	repo      Repository
	entries   ledger.Store
	cache     BalanceCache
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewService wires the wallet service.
func NewService(repo Repository, entries ledger.Store, cache BalanceCache, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		entries:   entries,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// MutationInput carries a credit or debit request.
type MutationInput struct {
	Amount      decimal.Decimal
	Description string
	ReferenceID string
}

// GetWallet returns the wallet by id, serving the balance read-through the
// cache.
func (s *Service) GetWallet(ctx context.Context, id uuid.UUID) (Wallet, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Wallet{}, err
	}
	return s.overlayBalance(ctx, w), nil
}

// GetWalletByUser returns the single wallet owned by the user.
func (s *Service) GetWalletByUser(ctx context.Context, userID uuid.UUID) (Wallet, error) {
	w, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return Wallet{}, err
	}
	return s.overlayBalance(ctx, w), nil
}

// Credit adds funds to the wallet and appends the matching deposit entry.
func (s *Service) Credit(ctx context.Context, walletID uuid.UUID, in MutationInput) (Wallet, ledger.Entry, error) {
	return s.mutate(ctx, walletID, in, ledger.TypeDeposit)
}

// Debit withdraws funds from the wallet and appends the matching withdrawal
// entry. The balance never goes negative.
func (s *Service) Debit(ctx context.Context, walletID uuid.UUID, in MutationInput) (Wallet, ledger.Entry, error) {
	return s.mutate(ctx, walletID, in, ledger.TypeWithdrawal)
}

func (s *Service) mutate(ctx context.Context, walletID uuid.UUID, in MutationInput, typ ledger.Type) (Wallet, ledger.Entry, error) {
	op := string(typ)

	if in.Amount.Sign() <= 0 {
		s.metrics.Operations.WithLabelValues(op, "invalid").Inc()
		return Wallet{}, ledger.Entry{}, ErrInvalidAmount
	}

	updated, entry, err := s.repo.Apply(ctx, walletID, func(w *Wallet) (*ledger.Entry, error) {
		before := w.Balance

		var mutateErr error
		if typ.Credits() {
			mutateErr = w.Credit(in.Amount)
		} else {
			mutateErr = w.Debit(in.Amount)
		}
		if mutateErr != nil {
			return nil, mutateErr
		}

		e, entryErr := ledger.New(w.ID, typ, in.Amount, before, w.Balance, w.Currency, in.Description, in.ReferenceID)
		if entryErr != nil {
			return nil, entryErr
		}
		return &e, nil
	})
	if err != nil {
		s.metrics.Operations.WithLabelValues(op, "rejected").Inc()
		return Wallet{}, ledger.Entry{}, err
	}

	// Invalidate before acknowledging so staleness is bounded by the
	// mutation, not only by the TTL.
	s.cache.RemoveBalance(ctx, walletID)

	s.publishCompleted(ctx, updated, *entry)
	s.metrics.Operations.WithLabelValues(op, "ok").Inc()
	return updated, *entry, nil
}

// Freeze suspends the wallet.
func (s *Service) Freeze(ctx context.Context, id uuid.UUID) (Wallet, error) {
	return s.transition(ctx, id, "freeze", (*Wallet).Freeze)
}

// Unfreeze reactivates a frozen wallet.
func (s *Service) Unfreeze(ctx context.Context, id uuid.UUID) (Wallet, error) {
	return s.transition(ctx, id, "unfreeze", (*Wallet).Unfreeze)
}

// Close permanently retires a wallet holding a zero balance.
func (s *Service) Close(ctx context.Context, id uuid.UUID) (Wallet, error) {
	return s.transition(ctx, id, "close", (*Wallet).Close)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, op string, fn func(*Wallet) error) (Wallet, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Wallet{}, err
	}

	if err := fn(&w); err != nil {
		s.metrics.Operations.WithLabelValues(op, "rejected").Inc()
		return Wallet{}, err
	}

	updated, err := s.repo.Update(ctx, w)
	if err != nil {
		s.metrics.Operations.WithLabelValues(op, "conflict").Inc()
		return Wallet{}, err
	}

	s.cache.RemoveBalance(ctx, id)
	s.metrics.Operations.WithLabelValues(op, "ok").Inc()
	return updated, nil
}

// TransactionHistory returns one page of the wallet's ledger, newest first.
func (s *Service) TransactionHistory(ctx context.Context, walletID uuid.UUID, page, pageSize int) (ledger.Page, error) {
	if _, err := s.repo.GetByID(ctx, walletID); err != nil {
		return ledger.Page{}, err
	}

	page, pageSize = ledger.ClampPaging(page, pageSize)

	entries, err := s.entries.ListByWallet(ctx, walletID, page, pageSize)
	if err != nil {
		return ledger.Page{}, err
	}
	total, err := s.entries.CountByWallet(ctx, walletID)
	if err != nil {
		return ledger.Page{}, err
	}
	return ledger.NewPage(entries, page, pageSize, total), nil
}

// overlayBalance serves the wallet's balance read-through the cache: a cached
// value replaces the stored one, a miss populates the cache from storage.
func (s *Service) overlayBalance(ctx context.Context, w Wallet) Wallet {
	if cached, ok := s.cache.GetBalance(ctx, w.ID); ok {
		s.metrics.CacheHits.Inc()
		w.Balance = cached
		return w
	}
	s.metrics.CacheMisses.Inc()
	s.cache.SetBalance(ctx, w.ID, w.Balance)
	return w
}

// publishCompleted emits TransactionCompleted best effort. The mutation has
// already committed; a broker hiccup must not fail the request.
func (s *Service) publishCompleted(ctx context.Context, w Wallet, entry ledger.Entry) {
	evt := events.TransactionCompleted{
		TransactionID: entry.ID,
		WalletID:      w.ID,
		UserID:        w.UserID,
		Type:          string(entry.Type),
		Amount:        entry.Amount,
		NewBalance:    entry.BalanceAfter,
		Currency:      entry.Currency,
		CompletedAt:   entry.CreatedAt,
		Description:   entry.Description,
	}
	if err := s.publisher.Publish(ctx, events.TypeTransactionCompleted, evt); err != nil {
		s.logger.Warn("transaction event publish failed",
			slog.String("wallet_id", w.ID.String()),
			slog.String("transaction_id", entry.ID.String()),
			slog.Any("error", err))
	}
}
