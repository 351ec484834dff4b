// Package events publishes domain events after records are committed.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Type names a domain event.
type Type string

const (
	ExpenseSaved        Type = "expense.saved"
	ExpenseDeleted      Type = "expense.deleted"
	FixedExpenseSaved   Type = "fixed_expense.saved"
	FixedExpenseDeleted Type = "fixed_expense.deleted"
	SalarySaved         Type = "salary.saved"
)

// Event is the message body published for every domain event. It carries
// identifiers only; consumers read the record itself.
type Event struct {
	Type       Type      `json:"type"`
	UserID     string    `json:"user_id"`
	ResourceID string    `json:"resource_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event stamped with the current time.
func New(eventType Type, userID, resourceID string) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// MemoryPublisher keeps published events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

// Publish records the event, or returns Err when set.
func (p *MemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *MemoryPublisher) Close() error { return nil }
