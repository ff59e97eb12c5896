package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePotWon       EventType = "pot_won"
	EventTypePotContinues EventType = "pot_continues"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PotWonEvent is emitted after a pot payout has gone through and the pot
// has been closed. Label distinguishes the scheduled draw, an instant win
// and the manual debug draw.
type PotWonEvent struct {
	GuildID  string
	WinnerID string
	Amount   int64
	Label    string
}

func (e PotWonEvent) Type() EventType {
	return EventTypePotWon
}

// PotContinuesEvent is emitted when a scheduled draw passes over a guild's
// pot without paying out.
type PotContinuesEvent struct {
	GuildID          string
	TotalAmount      int64
	ParticipantCount int
}

func (e PotContinuesEvent) Type() EventType {
	return EventTypePotContinues
}

// Handler processes a published event
type Handler func(ctx context.Context, event Event)

// Bus is a simple in-process event bus. Publishing never fails; a
// panicking handler is logged and the remaining handlers still run.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for the given event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish delivers the event to all subscribed handlers synchronously.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("Event handler panicked for %s: %v", event.Type(), r)
				}
			}()
			handler(ctx, event)
		}()
	}
}
