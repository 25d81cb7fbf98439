package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/diewo77/autoparts/internal/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 3 * time.Second

// Publisher hands domain events to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes JSON envelopes to a durable topic exchange using
// "<name>.v<version>" as routing key.
type AMQPPublisher struct {
	ch       Channel
	exchange string
}

// Dial connects to RabbitMQ and opens a publisher on exchange. Closing the
// returned connection also closes the publisher's channel.
func Dial(url, exchange string) (*amqp.Connection, *AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := NewAMQPPublisher(ch, exchange)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, p, nil
}

// NewAMQPPublisher declares the exchange so publishing never fails due to missing infra.
func NewAMQPPublisher(ch Channel, exchange string) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Close() error { return p.ch.Close() }

func RoutingKey(ev Event) string {
	return ev.EventName() + ".v" + strconv.Itoa(ev.EventVersion())
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	env := Wrap(ctx, ev)
	body, err := json.Marshal(env)
	if err != nil {
		metrics.RecordEventPublished(ev.EventName(), false)
		return fmt.Errorf("marshal %s: %w", ev.EventName(), err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = p.ch.PublishWithContext(pubCtx, p.exchange, RoutingKey(ev), false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.EventID,
		CorrelationId: env.CorrelationID,
		Timestamp:     env.OccurredAt,
		Type:          ev.EventName(),
		Body:          body,
	})
	metrics.RecordEventPublished(ev.EventName(), err == nil)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.EventName(), err)
	}
	return nil
}

// NopPublisher drops every event; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory for assertions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	// Err, when set, is returned instead of recording.
	Err error
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
