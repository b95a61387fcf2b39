package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeMinted          EventType = "minted"
	EventTypeBurned          EventType = "burned"
	EventTypeTransferred     EventType = "transferred"
	EventTypeInterestAccrued EventType = "interest_accrued"
	EventTypeRateLowered     EventType = "rate_lowered"
	EventTypeDeposited       EventType = "deposited"
	EventTypeRedeemed        EventType = "redeemed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// MintedEvent represents newly created ledger units
type MintedEvent struct {
	OperationID  string
	To           string
	Amount       int64
	StampedRate  int64
	NewPrincipal int64
}

func (e MintedEvent) Type() EventType {
	return EventTypeMinted
}

// BurnedEvent represents destroyed ledger units
type BurnedEvent struct {
	OperationID  string
	From         string
	Amount       int64
	NewPrincipal int64
}

func (e BurnedEvent) Type() EventType {
	return EventTypeBurned
}

// TransferredEvent represents units moved between two accounts
type TransferredEvent struct {
	OperationID string
	From        string
	To          string
	Amount      int64
}

func (e TransferredEvent) Type() EventType {
	return EventTypeTransferred
}

// InterestAccruedEvent represents interest folded into a principal during
// settlement
type InterestAccruedEvent struct {
	OperationID string
	Address     string
	Amount      int64
}

func (e InterestAccruedEvent) Type() EventType {
	return EventTypeInterestAccrued
}

// RateLoweredEvent represents a change of the global interest rate
type RateLoweredEvent struct {
	OldRate   int64
	NewRate   int64
	UpdatedBy string
}

func (e RateLoweredEvent) Type() EventType {
	return EventTypeRateLowered
}

// DepositedEvent represents external asset taken into custody
type DepositedEvent struct {
	OperationID string
	Caller      string
	Amount      int64
}

func (e DepositedEvent) Type() EventType {
	return EventTypeDeposited
}

// RedeemedEvent represents external asset paid back out of custody
type RedeemedEvent struct {
	OperationID string
	Caller      string
	Amount      int64
}

func (e RedeemedEvent) Type() EventType {
	return EventTypeRedeemed
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

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run
// synchronously in subscription order; a panicking handler is recovered and
// logged so it cannot take down the caller.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		func(h Handler, handlerIndex int) {
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

// TransactionalBus stashes events published during a unit of work and only
// forwards them to the real bus once the transaction committed.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional wrapper over the real bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event until Flush or Discard
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events to the real bus. Called after a successful
// commit; events are emitted on a background context because the transaction
// context may already be done.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops all pending events. Called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
