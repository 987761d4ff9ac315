package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"charityfund/events"

	"github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// RoutingKeyPrefix is prepended to the event type to form the routing key
const RoutingKeyPrefix = "charityfund."

// Envelope is the JSON body of every published message
type Envelope struct {
	Type       events.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    json.RawMessage  `json:"payload"`
}

// Encode wraps an event in an envelope and marshals it
func Encode(event events.Event, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.Type(), err)
	}

	body, err := json.Marshal(Envelope{
		Type:       event.Type(),
		OccurredAt: at.UTC(),
		Payload:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return body, nil
}

// RoutingKey returns the routing key used for an event type
func RoutingKey(eventType events.EventType) string {
	return RoutingKeyPrefix + string(eventType)
}

// Publisher is the part of an AMQP channel the forwarder needs
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Forwarder publishes committed domain events to an AMQP exchange
type Forwarder struct {
	publisher Publisher
	exchange  string
	timeout   time.Duration
	now       func() time.Time
}

// NewForwarder creates a forwarder publishing to exchange
func NewForwarder(publisher Publisher, exchange string) *Forwarder {
	return &Forwarder{
		publisher: publisher,
		exchange:  exchange,
		timeout:   5 * time.Second,
		now:       time.Now,
	}
}

// Attach subscribes the forwarder to every event on the bus
func (f *Forwarder) Attach(bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		if err := f.Forward(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"exchange":  f.exchange,
				"error":     err,
			}).Error("Failed to forward event to broker")
		}
	})
}

// Forward publishes a single event
func (f *Forwarder) Forward(ctx context.Context, event events.Event) error {
	at := f.now()
	body, err := Encode(event, at)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	err = f.publisher.PublishWithContext(
		ctx,
		f.exchange,
		RoutingKey(event.Type()),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    at,
			Type:         string(event.Type()),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type(), err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"exchange":  f.exchange,
	}).Debug("Forwarded event to broker")

	return nil
}

// Client owns the AMQP connection and channel used by the forwarder
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	closed   chan *amqp091.Error
}

// Dial connects to the broker and declares a durable topic exchange
func Dial(url, exchange string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Client{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		closed:   conn.NotifyClose(make(chan *amqp091.Error, 1)),
	}, nil
}

// Channel returns the channel events are published on
func (c *Client) Channel() *amqp091.Channel {
	return c.channel
}

// Exchange returns the declared exchange name
func (c *Client) Exchange() string {
	return c.exchange
}

// Wait blocks until ctx is done or the connection drops. A dropped connection is
// returned as an error.
func (c *Client) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case amqpErr, ok := <-c.closed:
		if !ok || amqpErr == nil {
			return fmt.Errorf("AMQP connection closed")
		}
		return fmt.Errorf("AMQP connection closed: %w", amqpErr)
	}
}

// Close closes the channel and the connection
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
