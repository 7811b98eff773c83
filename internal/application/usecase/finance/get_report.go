package finance

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// GetReportInput represents the input for fetching a daily report.
type GetReportInput struct {
	Date time.Time
}

// GetReportUseCase returns the aggregated report of a date, reading through the cache.
type GetReportUseCase struct {
	reportRepo adapter.ReportRepository
	cache      adapter.ReportCache
	aggregator *Aggregator
}

// NewGetReportUseCase creates a new GetReportUseCase instance.
func NewGetReportUseCase(reportRepo adapter.ReportRepository, cache adapter.ReportCache) *GetReportUseCase {
	return &GetReportUseCase{
		reportRepo: reportRepo,
		cache:      cache,
		aggregator: NewAggregator(),
	}
}

// Execute performs the report retrieval.
func (uc *GetReportUseCase) Execute(ctx context.Context, input GetReportInput) (*entity.ReportView, error) {
	ctx, span := tracer.Start(ctx, "finance.GetReport")
	defer span.End()

	if input.Date.IsZero() {
		return nil, domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidReportDate,
			"date",
			"date is required",
			domainerror.ErrInvalidReportDate,
		)
	}

	date := entity.NormalizeDate(input.Date)
	span.SetAttributes(attribute.String("finance.report_date", date.Format(entity.ReportDateLayout)))

	if uc.cache != nil {
		view, ok, err := uc.cache.Get(ctx, date)
		if err != nil {
			slog.Warn("Report cache read failed", "date", date.Format(entity.ReportDateLayout), "error", err)
		} else if ok {
			span.SetAttributes(attribute.Bool("finance.cache_hit", true))
			return view, nil
		}
	}

	report, err := uc.reportRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, toFinanceError(err)
	}

	view := uc.aggregator.Aggregate(report)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, view); err != nil {
			slog.Warn("Report cache write failed", "date", date.Format(entity.ReportDateLayout), "error", err)
		}
	}

	return view, nil
}
