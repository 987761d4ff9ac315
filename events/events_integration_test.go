package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"charityfund/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan AllocationRecordedEvent, 1)
	mainBus.Subscribe(EventTypeAllocationRecorded, func(ctx context.Context, event Event) {
		if e, ok := event.(AllocationRecordedEvent); ok {
			received <- e
		} else {
			t.Errorf("Expected AllocationRecordedEvent, got %T", event)
		}
	})

	needID := int64(42)
	testEvent := AllocationRecordedEvent{
		AllocationID: 1,
		DonationID:   7,
		NeedID:       &needID,
		Amount:       decimal.RequireFromString("600.00"),
	}

	// Publishing alone must not deliver anything
	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())
	select {
	case <-received:
		t.Fatal("Event delivered before commit")
	case <-time.After(50 * time.Millisecond):
	}

	transactionalBus.Flush(context.Background())
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case e := <-received:
		assert.Equal(t, testEvent.DonationID, e.DonationID)
		assert.Equal(t, needID, *e.NeedID)
		assert.True(t, testEvent.Amount.Equal(e.Amount))
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestDiscardDropsPendingEvents tests that a rolled back unit of work emits nothing
func TestDiscardDropsPendingEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	called := make(chan struct{}, 1)
	mainBus.SubscribeAll(func(ctx context.Context, event Event) {
		called <- struct{}{}
	})

	transactionalBus.Publish(NeedFulfilledEvent{NeedID: 1})
	transactionalBus.Discard()
	transactionalBus.Flush(context.Background())

	select {
	case <-called:
		t.Fatal("Discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestSubscribeAllReceivesEveryType tests wildcard subscriptions used by the broker
func TestSubscribeAllReceivesEveryType(t *testing.T) {
	mainBus := NewBus()

	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := map[EventType]bool{}
	wg.Add(3)
	mainBus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen[event.Type()] = true
		mu.Unlock()
	})

	ctx := context.Background()
	mainBus.Emit(ctx, NeedFulfilledEvent{NeedID: 1})
	mainBus.Emit(ctx, DonationStatusChangedEvent{
		DonationID: 2,
		OldStatus:  models.DonationStatusUnallocated,
		NewStatus:  models.DonationStatusFullyAllocated,
	})
	mainBus.Emit(ctx, SweepCompletedEvent{DonationsProcessed: 3})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Not all events were delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.True(t, seen[EventTypeNeedFulfilled])
	assert.True(t, seen[EventTypeDonationStatusChanged])
	assert.True(t, seen[EventTypeSweepCompleted])
}

// TestHandlerPanicIsRecovered tests that one failing handler does not affect others
func TestHandlerPanicIsRecovered(t *testing.T) {
	mainBus := NewBus()

	ok := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypeNeedFulfilled, func(ctx context.Context, event Event) {
		panic("boom")
	})
	mainBus.Subscribe(EventTypeNeedFulfilled, func(ctx context.Context, event Event) {
		ok <- struct{}{}
	})

	mainBus.Emit(context.Background(), NeedFulfilledEvent{NeedID: 9})

	select {
	case <-ok:
	case <-time.After(2 * time.Second):
		t.Fatal("Healthy handler did not run")
	}
}
