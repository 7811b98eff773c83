// Package entity defines the core business entities for the domain layer.
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outbox event types.
const (
	EventTypeProfitRecorded      = "finance.profit.recorded"
	EventTypeConsumptionRecorded = "finance.consumption.recorded"
	EventTypeSalaryRecorded      = "finance.salary.recorded"
)

// OutboxEvent is a financial event persisted in the recording transaction
// and published to the message broker afterwards.
type OutboxEvent struct {
	ID           uuid.UUID
	EventType    string
	AggregateID  string // Report date
	Payload      json.RawMessage
	TraceContext map[string]string // Propagation headers of the recording request
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

// NewOutboxEvent creates an unpublished outbox event with a JSON payload.
func NewOutboxEvent(eventType, aggregateID string, payload any) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     raw,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
