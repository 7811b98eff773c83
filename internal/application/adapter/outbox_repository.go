// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// OutboxRepository defines access to financial events awaiting publication.
type OutboxRepository interface {
	// FetchUnpublished retrieves the oldest unpublished events.
	FetchUnpublished(ctx context.Context, limit int) ([]*entity.OutboxEvent, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
