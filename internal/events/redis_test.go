package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nile-pay/nile_pay/internal/logging"
)

func newStreamClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStreamPublisherAppendsTypedMessage(t *testing.T) {
	client := newStreamClient(t)
	pub := NewStreamPublisher(client, "users.events")
	ctx := context.Background()

	evt := UserCreated{UserID: uuid.New(), Email: "ada@example.com"}
	if err := pub.Publish(ctx, TypeUserCreated, evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msgs, err := client.XRange(ctx, "users.events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Values["type"] != TypeUserCreated {
		t.Fatalf("expected type %s, got %v", TypeUserCreated, msgs[0].Values["type"])
	}

	var decoded UserCreated
	payload, _ := msgs[0].Values["payload"].(string)
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.UserID != evt.UserID {
		t.Fatalf("payload lost the user id: %+v", decoded)
	}
}

func TestSubscriberAcksAfterHandlerSucceeds(t *testing.T) {
	client := newStreamClient(t)
	ctx := context.Background()

	pub := NewStreamPublisher(client, "users.events")
	if err := pub.Publish(ctx, TypeUserCreated, UserCreated{UserID: uuid.New()}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	received := make(chan string, 1)
	sub := NewSubscriber(client, "users.events", "wallet-service", "consumer-1",
		func(_ context.Context, eventType string, _ []byte) error {
			received <- eventType
			return nil
		}, logging.Discard())

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- sub.Run(runCtx) }()

	select {
	case eventType := <-received:
		if eventType != TypeUserCreated {
			t.Fatalf("expected %s, got %s", TypeUserCreated, eventType)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("handler never received the message")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("subscriber did not stop on cancellation")
	}

	pending, err := client.XPending(ctx, "users.events", "wallet-service").Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 0 {
		t.Fatalf("expected 0 pending after ack, got %d", pending.Count)
	}
}

func TestSubscriberLeavesFailedMessagesPending(t *testing.T) {
	client := newStreamClient(t)
	ctx := context.Background()

	pub := NewStreamPublisher(client, "users.events")
	if err := pub.Publish(ctx, TypeUserCreated, UserCreated{UserID: uuid.New()}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	attempted := make(chan struct{}, 1)
	sub := NewSubscriber(client, "users.events", "wallet-service", "consumer-1",
		func(context.Context, string, []byte) error {
			select {
			case attempted <- struct{}{}:
			default:
			}
			return errors.New("storage down")
		}, logging.Discard())

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- sub.Run(runCtx) }()

	select {
	case <-attempted:
	case <-time.After(3 * time.Second):
		t.Fatalf("handler never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("subscriber did not stop on cancellation")
	}

	pending, err := client.XPending(ctx, "users.events", "wallet-service").Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 1 {
		t.Fatalf("failed message must stay pending for redelivery, got %d", pending.Count)
	}
}
