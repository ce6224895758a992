package wallet

import "errors"

var (
	// ErrInvalidAmount rejects credit/debit requests with a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrNotFound indicates no wallet exists for the given identifier.
	ErrNotFound = errors.New("wallet not found")

	// ErrConflict indicates a uniqueness violation or a concurrent write that
	// invalidated the caller's view of the wallet.
	ErrConflict = errors.New("wallet write conflict")

	// ErrNotActive rejects balance mutations on frozen or closed wallets.
	ErrNotActive = errors.New("wallet is not active")

	// ErrClosed rejects any transition attempted on a closed wallet. Closed is
	// terminal.
	ErrClosed = errors.New("wallet is closed")

	// ErrInsufficientFunds rejects debits exceeding the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNonZeroBalance rejects closing a wallet that still holds funds.
	ErrNonZeroBalance = errors.New("cannot close wallet with non-zero balance")
)
