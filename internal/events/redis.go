package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	typeField    = "type"
	payloadField = "payload"

	publishTimeout = 2 * time.Second
	readBlock      = 5 * time.Second
	readBatch      = 16
)

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

// NewStreamPublisher builds a publisher writing to the given stream.
func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

// Publish encodes the payload as JSON and appends it to the stream.
func (p *StreamPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{typeField: eventType, payloadField: string(body)},
	}).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

// Subscriber consumes a Redis stream through a consumer group, giving
// at-least-once delivery: messages are acknowledged only after the handler
// succeeds, and pending messages from dead consumers are reclaimed on start.
type Subscriber struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	handler  Handler
	logger   *slog.Logger
}

// NewSubscriber builds a consumer-group subscriber for the stream.
func NewSubscriber(client *redis.Client, stream, group, consumer string, handler Handler, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Run blocks consuming the stream until the context is cancelled.
func (s *Subscriber) Run(ctx context.Context) error {
	if err := s.ensureGroup(ctx); err != nil {
		return err
	}
	if err := s.reclaimPending(ctx); err != nil {
		return err
	}

	for {
		res, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{s.stream, ">"},
			Count:    readBatch,
			Block:    readBlock,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			s.logger.Error("stream read failed", slog.String("stream", s.stream), slog.Any("error", err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				continue
			}
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				s.dispatch(ctx, msg)
			}
		}
	}
}

func (s *Subscriber) ensureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s: %w", s.group, err)
	}
	return nil
}

// reclaimPending takes over messages another consumer read but never
// acknowledged, so a crashed instance cannot strand deliveries.
func (s *Subscriber) reclaimPending(ctx context.Context) error {
	start := "0-0"
	for {
		msgs, next, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   s.stream,
			Group:    s.group,
			Consumer: s.consumer,
			MinIdle:  time.Minute,
			Start:    start,
			Count:    readBatch,
		}).Result()
		if err != nil {
			return fmt.Errorf("reclaim pending messages: %w", err)
		}
		for _, msg := range msgs {
			s.dispatch(ctx, msg)
		}
		if next == "0-0" || len(msgs) == 0 {
			return nil
		}
		start = next
	}
}

func (s *Subscriber) dispatch(ctx context.Context, msg redis.XMessage) {
	eventType, _ := msg.Values[typeField].(string)
	payload, _ := msg.Values[payloadField].(string)

	if err := s.handler(ctx, eventType, []byte(payload)); err != nil {
		// Left pending: the substrate redelivers after MinIdle.
		s.logger.Error("event handling failed",
			slog.String("stream", s.stream),
			slog.String("id", msg.ID),
			slog.String("type", eventType),
			slog.Any("error", err))
		return
	}

	if err := s.client.XAck(ctx, s.stream, s.group, msg.ID).Err(); err != nil {
		s.logger.Warn("event ack failed", slog.String("id", msg.ID), slog.Any("error", err))
	}
}
