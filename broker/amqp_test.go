package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"charityfund/events"
	"charityfund/models"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	args := m.Called(exchange, key, msg)
	return args.Error(0)
}

func TestEncode(t *testing.T) {
	needID := int64(4)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	body, err := Encode(events.AllocationRecordedEvent{
		AllocationID: 12,
		DonationID:   3,
		NeedID:       &needID,
		Amount:       decimal.RequireFromString("25.50"),
	}, at)
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, events.EventTypeAllocationRecorded, envelope.Type)
	assert.True(t, at.Equal(envelope.OccurredAt))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, float64(12), payload["allocation_id"])
	assert.Equal(t, "25.5", payload["amount"])
	assert.NotContains(t, payload, "beneficiary_id")
}

func TestForwarder_Forward(t *testing.T) {
	pub := new(mockPublisher)
	forwarder := NewForwarder(pub, "charity.events")

	pub.On("PublishWithContext", "charity.events", "charityfund.donation_status_changed", mock.MatchedBy(func(msg amqp091.Publishing) bool {
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp091.Persistent &&
			msg.Type == string(events.EventTypeDonationStatusChanged)
	})).Return(nil).Once()

	err := forwarder.Forward(context.Background(), events.DonationStatusChangedEvent{
		DonationID: 9,
		OldStatus:  models.DonationStatusUnallocated,
		NewStatus:  models.DonationStatusFullyAllocated,
	})

	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestForwarder_ForwardError(t *testing.T) {
	pub := new(mockPublisher)
	forwarder := NewForwarder(pub, "charity.events")
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	err := forwarder.Forward(context.Background(), events.SweepCompletedEvent{})

	assert.ErrorContains(t, err, "channel closed")
}

func TestForwarder_AttachForwardsBusEvents(t *testing.T) {
	pub := new(mockPublisher)
	forwarder := NewForwarder(pub, "charity.events")
	bus := events.NewBus()
	forwarder.Attach(bus)

	done := make(chan struct{})
	pub.On("PublishWithContext", "charity.events", "charityfund.need_fulfilled", mock.Anything).
		Run(func(mock.Arguments) { close(done) }).
		Return(nil).Once()

	bus.Emit(context.Background(), events.NeedFulfilledEvent{NeedID: 1})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
	pub.AssertExpectations(t)
}
