package events

import (
	"context"
	"sync"
)

// Published captures one event recorded by the memory publisher.
type Published struct {
	Type    string
	Payload any
}

// MemoryPublisher records published events for assertions in tests.
type MemoryPublisher struct {
	mu       sync.Mutex
	events   []Published
	failWith error
}

// NewMemoryPublisher constructs an empty recording publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// FailWith makes subsequent Publish calls return err. Pass nil to recover.
func (p *MemoryPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}

// Publish records the event.
func (p *MemoryPublisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.events = append(p.events, Published{Type: eventType, Payload: payload})
	return nil
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Published, len(p.events))
	copy(out, p.events)
	return out
}
