package events

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to the structured logger instead of a stream.
// Used in development mode when Redis is absent, and as a harmless sink in
// tests.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a logging publisher stub.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event and reports success.
func (p *LogPublisher) Publish(_ context.Context, eventType string, payload any) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.Info("event published", slog.String("type", eventType), slog.Any("payload", payload))
	return nil
}
