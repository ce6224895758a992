package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgx executors the store needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so the store can run standalone or inside a wallet
// repository transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists ledger entries in the transactions table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts an immutable history entry.
func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.Exec(ctx, `INSERT INTO transactions
        (id, wallet_id, type, amount, balance_before, balance_after, currency, description, reference_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11)`,
		entry.ID, entry.WalletID, string(entry.Type), entry.Amount, entry.BalanceBefore, entry.BalanceAfter,
		entry.Currency, entry.Description, entry.ReferenceID, string(entry.Status), entry.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByWallet returns one history page for a wallet, newest first.
func (s *PostgresStore) ListByWallet(ctx context.Context, walletID uuid.UUID, page, pageSize int) ([]Entry, error) {
	page, pageSize = ClampPaging(page, pageSize)
	offset := (page - 1) * pageSize

	rows, err := s.db.Query(ctx, `SELECT id, wallet_id, type, amount, balance_before, balance_after,
            currency, COALESCE(description, ''), COALESCE(reference_id, ''), status, created_at
        FROM transactions
        WHERE wallet_id = $1
        ORDER BY created_at DESC, id DESC
        OFFSET $2 LIMIT $3`, walletID, offset, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, pageSize)
	for rows.Next() {
		var e Entry
		var typ, status string
		if err := rows.Scan(&e.ID, &e.WalletID, &typ, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
			&e.Currency, &e.Description, &e.ReferenceID, &status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Type = Type(typ)
		e.Status = Status(status)
		if !e.Type.Valid() || !e.Status.Valid() {
			return nil, fmt.Errorf("stored entry %s has unknown type %q or status %q", e.ID, typ, status)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

// CountByWallet returns the total number of entries recorded for a wallet.
func (s *PostgresStore) CountByWallet(ctx context.Context, walletID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, walletID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return count, nil
}
