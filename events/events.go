package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDeposit      EventType = "vault_deposit"
	EventTypeWithdraw     EventType = "vault_withdraw"
	EventTypeVaultCreated EventType = "vault_created"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DepositEvent represents a committed deposit into a vault
type DepositEvent struct {
	OwnerIdentity string
	VaultID       int64
	AssetID       string
	Amount        int64
	Timestamp     int64 // unix seconds
}

func (e DepositEvent) Type() EventType {
	return EventTypeDeposit
}

// WithdrawEvent represents a committed withdrawal from a vault
type WithdrawEvent struct {
	OwnerIdentity string
	VaultID       int64
	AssetID       string
	Amount        int64
	Timestamp     int64 // unix seconds
}

func (e WithdrawEvent) Type() EventType {
	return EventTypeWithdraw
}

// VaultCreatedEvent represents a newly configured vault
type VaultCreatedEvent struct {
	OwnerIdentity   string
	VaultID         int64
	AssetID         string
	InterestRateBps int64
	MinDeposit      int64
	Timestamp       int64 // unix seconds
}

func (e VaultCreatedEvent) Type() EventType {
	return EventTypeVaultCreated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
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

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow subscriber cannot stall commits
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events published during a unit of work. Nothing
// reaches the real bus until Flush, which the unit of work calls only after
// the database commit succeeds; Discard drops everything on rollback.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event pending commit")
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit; events
// outlive the transaction, so emission uses a fresh background context.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events")

	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard clears pending events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
