package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// OutboxEventModel represents the outbox_events table in the database.
type OutboxEventModel struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey"`
	EventType    string       `gorm:"type:varchar(100);not null"`
	AggregateID  string       `gorm:"type:varchar(100);not null"`
	Payload      string       `gorm:"type:jsonb;not null;default:'{}'"`
	TraceContext string       `gorm:"type:text"` // JSON object of propagation headers
	CreatedAt    time.Time    `gorm:"not null;index"`
	PublishedAt  sql.NullTime `gorm:"type:timestamptz;index"`
}

// TableName returns the table name for the OutboxEventModel.
func (OutboxEventModel) TableName() string {
	return "outbox_events"
}

// ToEntity converts an OutboxEventModel to a domain OutboxEvent entity.
func (m *OutboxEventModel) ToEntity() *entity.OutboxEvent {
	var publishedAt *time.Time
	if m.PublishedAt.Valid {
		publishedAt = &m.PublishedAt.Time
	}

	var traceContext map[string]string
	if m.TraceContext != "" {
		// An unreadable carrier is dropped.
		_ = json.Unmarshal([]byte(m.TraceContext), &traceContext)
	}

	return &entity.OutboxEvent{
		ID:           m.ID,
		EventType:    m.EventType,
		AggregateID:  m.AggregateID,
		Payload:      []byte(m.Payload),
		TraceContext: traceContext,
		CreatedAt:    m.CreatedAt,
		PublishedAt:  publishedAt,
	}
}

// OutboxEventModelFromEntity creates an OutboxEventModel from a domain OutboxEvent entity.
func OutboxEventModelFromEntity(e *entity.OutboxEvent) *OutboxEventModel {
	var publishedAt sql.NullTime
	if e.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: *e.PublishedAt, Valid: true}
	}

	payload := string(e.Payload)
	if payload == "" {
		payload = "{}"
	}

	var traceContext string
	if len(e.TraceContext) > 0 {
		if raw, err := json.Marshal(e.TraceContext); err == nil {
			traceContext = string(raw)
		}
	}

	return &OutboxEventModel{
		ID:           e.ID,
		EventType:    e.EventType,
		AggregateID:  e.AggregateID,
		Payload:      payload,
		TraceContext: traceContext,
		CreatedAt:    e.CreatedAt,
		PublishedAt:  publishedAt,
	}
}
