// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// ReportRepository defines read access to reports and their events.
// Implementations load events with a bounded number of queries.
type ReportRepository interface {
	// GetByDate retrieves the report of a date with its profits and consumptions.
	GetByDate(ctx context.Context, date time.Time) (*entity.ReportWithEvents, error)

	// GetInRange retrieves all reports between start and end (inclusive), ordered by date.
	GetInRange(ctx context.Context, start, end time.Time) ([]*entity.ReportWithEvents, error)
}

// ReportCache caches aggregated report views by date.
type ReportCache interface {
	// Get returns the cached view of a date, if any.
	Get(ctx context.Context, date time.Time) (*entity.ReportView, bool, error)

	// Set stores a report view.
	Set(ctx context.Context, view *entity.ReportView) error

	// Invalidate evicts the cached view of a date.
	Invalidate(ctx context.Context, date time.Time) error
}
