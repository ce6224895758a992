package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names carried on the stream alongside the JSON payload.
const (
	TypeUserCreated          = "user.created"
	TypeWalletCreated        = "wallet.created"
	TypeTransactionCompleted = "transaction.completed"
)

// UserCreated is published by the user subsystem when a registration
// completes. Delivery is at-least-once: consumers must tolerate duplicates.
type UserCreated struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// WalletCreated is emitted once per successful wallet provisioning.
type WalletCreated struct {
	WalletID  uuid.UUID `json:"walletId"`
	UserID    uuid.UUID `json:"userId"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// TransactionCompleted is emitted after a successful credit or debit.
type TransactionCompleted struct {
	TransactionID uuid.UUID       `json:"transactionId"`
	WalletID      uuid.UUID       `json:"walletId"`
	UserID        uuid.UUID       `json:"userId"`
	Type          string          `json:"transactionType"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	Currency      string          `json:"currency"`
	CompletedAt   time.Time       `json:"completedAt"`
	Description   string          `json:"description,omitempty"`
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Handler processes one raw event from the stream. Returning an error leaves
// the message unacknowledged so the substrate redelivers it.
type Handler func(ctx context.Context, eventType string, payload []byte) error
