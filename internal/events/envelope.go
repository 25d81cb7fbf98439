// Package events publishes versioned domain events to RabbitMQ.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const producer = "autoparts"

// Event is a payload that knows its own routing identity.
type Event interface {
	EventName() string
	EventVersion() int
	// PartitionKey groups events of one aggregate.
	PartitionKey() string
}

// EventEnvelope represents the common envelope for all events.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       T         `json:"payload"`
}

// Wrap builds the envelope for ev. The request id set by chi's RequestID
// middleware becomes the correlation id.
func Wrap[T Event](ctx context.Context, ev T) EventEnvelope[T] {
	return EventEnvelope[T]{
		EventName:     ev.EventName(),
		EventVersion:  ev.EventVersion(),
		EventID:       uuid.NewString(),
		CorrelationID: middleware.GetReqID(ctx),
		Producer:      producer,
		PartitionKey:  ev.PartitionKey(),
		OccurredAt:    time.Now().UTC(),
		Payload:       ev,
	}
}

// Validate ensures the envelope contains the expected event identity.
func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	return nil
}
