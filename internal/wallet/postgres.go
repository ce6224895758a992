package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nile-pay/nile_pay/internal/ledger"
)

const uniqueViolationCode = "23505"

const walletColumns = `id, user_id, balance, currency, status, version, created_at, updated_at`

// PostgresRepository stores wallets in PostgreSQL. The wallets table carries a
// unique index on user_id, which backs the one-wallet-per-user invariant even
// under racing inserts.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts a wallet record, mapping unique violations to ErrConflict so
// the provisioning consumer can treat racing duplicates as benign.
func (r *PostgresRepository) Add(ctx context.Context, w Wallet) error {
	_, err := r.db.Exec(ctx, `INSERT INTO wallets (`+walletColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.UserID, w.Balance, w.Currency, string(w.Status), w.Version, w.CreatedAt.UTC(), w.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("wallet for user %s: %w", w.UserID, ErrConflict)
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByID fetches a wallet by its identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)
	return scanWallet(row)
}

// GetByUserID fetches the single wallet owned by a user.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	return scanWallet(row)
}

// ExistsForUser reports whether the user already owns a wallet.
func (r *PostgresRepository) ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("wallet exists check: %w", err)
	}
	return exists, nil
}

// Update replaces the persisted wallet state guarded by an optimistic version
// check. A zero-row update means either the wallet vanished or a concurrent
// writer bumped the version first.
func (r *PostgresRepository) Update(ctx context.Context, w Wallet) (Wallet, error) {
	tag, err := r.db.Exec(ctx, `UPDATE wallets
        SET balance = $1, status = $2, version = version + 1, updated_at = $3
        WHERE id = $4 AND version = $5`,
		w.Balance, string(w.Status), w.UpdatedAt, w.ID, w.Version)
	if err != nil {
		return Wallet{}, fmt.Errorf("update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exists, existsErr := r.exists(ctx, w.ID)
		if existsErr != nil {
			return Wallet{}, existsErr
		}
		if !exists {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, fmt.Errorf("wallet %s version %d: %w", w.ID, w.Version, ErrConflict)
	}
	w.Version++
	return w, nil
}

// Apply loads the wallet under FOR UPDATE, applies the mutation and persists
// the new state plus the resulting ledger entry inside one transaction.
func (r *PostgresRepository) Apply(ctx context.Context, id uuid.UUID, fn MutateFunc) (Wallet, *ledger.Entry, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Wallet{}, nil, fmt.Errorf("begin wallet tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id)
	w, err := scanWallet(row)
	if err != nil {
		return Wallet{}, nil, err
	}

	entry, err := fn(&w)
	if err != nil {
		return Wallet{}, nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE wallets
        SET balance = $1, status = $2, version = version + 1, updated_at = $3
        WHERE id = $4`,
		w.Balance, string(w.Status), w.UpdatedAt, w.ID); err != nil {
		return Wallet{}, nil, fmt.Errorf("persist wallet mutation: %w", err)
	}
	w.Version++

	if entry != nil {
		if err := ledger.NewPostgresStore(tx).Append(ctx, *entry); err != nil {
			return Wallet{}, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Wallet{}, nil, fmt.Errorf("commit wallet tx: %w", err)
	}
	return w, entry, nil
}

func (r *PostgresRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wallets WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("wallet exists check: %w", err)
	}
	return exists, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var w Wallet
	var status string
	var updatedAt *time.Time
	if err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.Currency, &status, &w.Version, &w.CreatedAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return Wallet{}, err
	}
	w.Status = parsed
	w.CreatedAt = w.CreatedAt.UTC()
	if updatedAt != nil {
		t := updatedAt.UTC()
		w.UpdatedAt = &t
	}
	return w, nil
}
