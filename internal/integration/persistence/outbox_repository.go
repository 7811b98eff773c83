package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

// outboxRepository implements the adapter.OutboxRepository interface.
type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new outbox repository instance.
func NewOutboxRepository(db *gorm.DB) adapter.OutboxRepository {
	return &outboxRepository{
		db: db,
	}
}

// FetchUnpublished retrieves the oldest events not yet published.
func (r *outboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]*entity.OutboxEvent, error) {
	var models []model.OutboxEventModel
	result := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	events := make([]*entity.OutboxEvent, len(models))
	for i := range models {
		events[i] = models[i].ToEntity()
	}
	return events, nil
}

// MarkPublished stamps events as published.
func (r *outboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.OutboxEventModel{}).
		Where("id IN ?", ids).
		Update("published_at", time.Now().UTC()).Error
}
