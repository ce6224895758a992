package provisioning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nile-pay/nile_pay/internal/events"
	"github.com/nile-pay/nile_pay/internal/metrics"
	"github.com/nile-pay/nile_pay/internal/wallet"
)

// Consumer provisions a wallet in reaction to user-created events. It is safe
// under at-least-once delivery: the existence check skips known users, and a
// storage-level uniqueness violation from a racing duplicate is treated as a
// benign no-op rather than a failure.
type Consumer struct {
	repo      wallet.Repository
	publisher events.Publisher
	currency  string
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewConsumer wires the provisioning consumer.
func NewConsumer(repo wallet.Repository, publisher events.Publisher, currency string, m *metrics.Metrics, logger *slog.Logger) *Consumer {
	if currency == "" {
		currency = wallet.DefaultCurrency
	}
	return &Consumer{
		repo:      repo,
		publisher: publisher,
		currency:  currency,
		metrics:   m,
		logger:    logger,
	}
}

// HandleMessage adapts raw stream messages to the typed handler. Unknown event
// types and undecodable payloads are acknowledged: redelivery cannot fix them.
func (c *Consumer) HandleMessage(ctx context.Context, eventType string, payload []byte) error {
	if eventType != events.TypeUserCreated {
		return nil
	}

	var evt events.UserCreated
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.logger.Error("discarding undecodable user event", slog.Any("error", err))
		c.metrics.EventsConsumed.WithLabelValues(eventType, "discarded").Inc()
		return nil
	}
	return c.HandleUserCreated(ctx, evt)
}

// HandleUserCreated provisions a wallet for a newly registered user and
// publishes the wallet-created event. Errors are returned so the delivery
// substrate redelivers the message.
func (c *Consumer) HandleUserCreated(ctx context.Context, evt events.UserCreated) error {
	log := c.logger.With(slog.String("user_id", evt.UserID.String()))
	log.Info("received user created event")

	if evt.UserID == uuid.Nil {
		log.Error("discarding user event without user id")
		c.metrics.EventsConsumed.WithLabelValues(events.TypeUserCreated, "discarded").Inc()
		return nil
	}

	exists, err := c.repo.ExistsForUser(ctx, evt.UserID)
	if err != nil {
		return fmt.Errorf("wallet existence check for user %s: %w", evt.UserID, err)
	}

	w, create := plan(evt, exists, c.currency)
	if !create {
		log.Warn("wallet already exists, skipping")
		c.metrics.EventsConsumed.WithLabelValues(events.TypeUserCreated, "duplicate").Inc()
		return nil
	}

	if err := c.repo.Add(ctx, w); err != nil {
		if errors.Is(err, wallet.ErrConflict) {
			// A concurrent delivery won the insert race. Same outcome.
			log.Warn("wallet already created by concurrent delivery")
			c.metrics.EventsConsumed.WithLabelValues(events.TypeUserCreated, "duplicate").Inc()
			return nil
		}
		return fmt.Errorf("persist wallet for user %s: %w", evt.UserID, err)
	}

	log.Info("wallet provisioned", slog.String("wallet_id", w.ID.String()))
	c.metrics.WalletsProvisioned.Inc()

	if err := c.publisher.Publish(ctx, events.TypeWalletCreated, events.WalletCreated{
		WalletID:  w.ID,
		UserID:    w.UserID,
		Currency:  w.Currency,
		CreatedAt: w.CreatedAt,
	}); err != nil {
		return fmt.Errorf("publish wallet created for %s: %w", w.ID, err)
	}

	c.metrics.EventsConsumed.WithLabelValues(events.TypeUserCreated, "ok").Inc()
	return nil
}

// plan is the pure provisioning decision: given the event and whether a
// wallet already exists, it yields the wallet to create, if any.
func plan(evt events.UserCreated, exists bool, currency string) (wallet.Wallet, bool) {
	if exists {
		return wallet.Wallet{}, false
	}
	return wallet.New(evt.UserID, currency), true
}
