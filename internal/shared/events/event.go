package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a domain event published on the bus.
type Event interface {
	// EventID uniquely identifies this event instance.
	EventID() uuid.UUID

	// EventType names the event, e.g. "ProposalSubmitted".
	EventType() string

	// OccurredAt is the event timestamp.
	OccurredAt() time.Time

	// AggregateID identifies the aggregate that produced the event.
	AggregateID() uuid.UUID

	// AggregateType names the aggregate kind, e.g. "Collaboration".
	AggregateType() string
}

// BaseEvent carries the common event fields. Concrete events embed it.
type BaseEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateUUID uuid.UUID `json:"aggregate_id"`
	AggregateName string    `json:"aggregate_type"`
}

func (e BaseEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseEvent) EventType() string      { return e.Type }
func (e BaseEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e BaseEvent) AggregateID() uuid.UUID { return e.AggregateUUID }
func (e BaseEvent) AggregateType() string  { return e.AggregateName }

// NewBaseEvent creates a BaseEvent with a fresh ID and timestamp.
func NewBaseEvent(eventType string, aggregateID uuid.UUID, aggregateType string) BaseEvent {
	return BaseEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggregateUUID: aggregateID,
		AggregateName: aggregateType,
	}
}
