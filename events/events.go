package events

import (
	"context"
	"sync"

	"charityfund/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAllocationRecorded    EventType = "allocation_recorded"
	EventTypeNeedFulfilled         EventType = "need_fulfilled"
	EventTypeDonationStatusChanged EventType = "donation_status_changed"
	EventTypeSweepCompleted        EventType = "sweep_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AllocationRecordedEvent represents a ledger entry that was committed
type AllocationRecordedEvent struct {
	AllocationID  int64           `json:"allocation_id"`
	DonationID    int64           `json:"donation_id"`
	NeedID        *int64          `json:"need_id,omitempty"`
	BeneficiaryID *int64          `json:"beneficiary_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	AllocatedBy   *string         `json:"allocated_by,omitempty"`
}

func (e AllocationRecordedEvent) Type() EventType {
	return EventTypeAllocationRecorded
}

// NeedFulfilledEvent represents a need reaching its target
type NeedFulfilledEvent struct {
	NeedID       int64           `json:"need_id"`
	Title        string          `json:"title"`
	AmountNeeded decimal.Decimal `json:"amount_needed"`
	AmountRaised decimal.Decimal `json:"amount_raised"`
}

func (e NeedFulfilledEvent) Type() EventType {
	return EventTypeNeedFulfilled
}

// DonationStatusChangedEvent represents a donation moving between allocation states
type DonationStatusChangedEvent struct {
	DonationID int64                 `json:"donation_id"`
	DonorRef   string                `json:"donor_ref"`
	OldStatus  models.DonationStatus `json:"old_status"`
	NewStatus  models.DonationStatus `json:"new_status"`
}

func (e DonationStatusChangedEvent) Type() EventType {
	return EventTypeDonationStatusChanged
}

// SweepCompletedEvent represents the end of a sweep over unallocated donations
type SweepCompletedEvent struct {
	RunID              uuid.UUID       `json:"run_id"`
	DonationsProcessed int             `json:"donations_processed"`
	DonationsFailed    int             `json:"donations_failed"`
	TotalAllocated     decimal.Decimal `json:"total_allocated"`
}

func (e SweepCompletedEvent) Type() EventType {
	return EventTypeSweepCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wildcard []Handler
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

// SubscribeAll adds a handler that receives every event type
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.wildcard = append(b.wildcard, handler)

	log.WithField("handlerCount", len(b.wildcard)).Debug("Subscribed handler to all event types")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Type()])+len(b.wildcard))
	handlers = append(handlers, b.handlers[event.Type()]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow consumer never holds up an allocation
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

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus once the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus wraps the main bus. A nil bus drops events on flush.
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event until the transaction commits
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event until commit")
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	defer func() { b.pending = nil }()

	if b.real == nil {
		return
	}

	// Handlers outlive the transaction, so they get a context detached from its cancellation
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("eventCount", len(b.pending)).Debug("Flushed committed events")
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	if len(b.pending) > 0 {
		log.WithField("eventCount", len(b.pending)).Debug("Discarded events of rolled back transaction")
	}
	b.pending = nil
}
