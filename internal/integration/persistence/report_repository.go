package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

// reportRepository implements the adapter.ReportRepository interface.
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance.
func NewReportRepository(db *gorm.DB) adapter.ReportRepository {
	return &reportRepository{
		db: db,
	}
}

// withEvents preloads profits (with appointments) and consumptions, one query per association.
func withEvents(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Profits", func(db *gorm.DB) *gorm.DB {
			return db.Order("profits.id ASC")
		}).
		Preload("Profits.Appointment").
		Preload("Consumptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("consumptions.id ASC")
		})
}

// GetByDate retrieves the report of a date with all of its events.
func (r *reportRepository) GetByDate(ctx context.Context, date time.Time) (*entity.ReportWithEvents, error) {
	var reportModel model.ReportModel
	result := withEvents(r.db.WithContext(ctx)).
		Where("date = ?", entity.NormalizeDate(date)).
		First(&reportModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrReportNotFound
		}
		return nil, result.Error
	}
	return reportModel.ToEntityWithEvents(), nil
}

// GetInRange retrieves the reports between start and end (inclusive), ordered by date.
func (r *reportRepository) GetInRange(ctx context.Context, start, end time.Time) ([]*entity.ReportWithEvents, error) {
	var models []model.ReportModel
	result := withEvents(r.db.WithContext(ctx)).
		Where("date >= ? AND date <= ?", entity.NormalizeDate(start), entity.NormalizeDate(end)).
		Order("date ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	reports := make([]*entity.ReportWithEvents, len(models))
	for i := range models {
		reports[i] = models[i].ToEntityWithEvents()
	}
	return reports, nil
}
