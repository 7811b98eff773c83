package finance

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/domain/valueobject"
)

// MaxRangeDays bounds the number of days a single range query may cover.
const MaxRangeDays = 366

// GetReportsInRangeInput represents the input for a range report.
type GetReportsInRangeInput struct {
	StartDate time.Time
	EndDate   time.Time
}

// GetReportsInRangeUseCase aggregates all reports between two dates.
type GetReportsInRangeUseCase struct {
	reportRepo adapter.ReportRepository
	aggregator *Aggregator
}

// NewGetReportsInRangeUseCase creates a new GetReportsInRangeUseCase instance.
func NewGetReportsInRangeUseCase(reportRepo adapter.ReportRepository) *GetReportsInRangeUseCase {
	return &GetReportsInRangeUseCase{
		reportRepo: reportRepo,
		aggregator: NewAggregator(),
	}
}

// Execute validates the range and aggregates its reports.
// An invalid range is rejected before the repository is queried.
func (uc *GetReportsInRangeUseCase) Execute(ctx context.Context, input GetReportsInRangeInput) (*entity.RangeReport, error) {
	ctx, span := tracer.Start(ctx, "finance.GetReportsInRange")
	defer span.End()

	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidDateRange,
			"start_date",
			"start_date and end_date are required",
			domainerror.ErrInvalidDateRange,
		)
	}

	dateRange, err := valueobject.NewDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidDateRange,
			"start_date",
			err.Error(),
			domainerror.ErrInvalidDateRange,
		)
	}

	if dateRange.Days() > MaxRangeDays {
		return nil, domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidDateRange,
			"end_date",
			fmt.Sprintf("date range must not exceed %d days", MaxRangeDays),
			domainerror.ErrInvalidDateRange,
		)
	}

	span.SetAttributes(
		attribute.String("finance.start_date", dateRange.Start.Format(entity.ReportDateLayout)),
		attribute.String("finance.end_date", dateRange.End.Format(entity.ReportDateLayout)),
	)

	reports, err := uc.reportRepo.GetInRange(ctx, dateRange.Start, dateRange.End)
	if err != nil {
		return nil, domainerror.NewFinanceInternalError("failed to load reports", err)
	}

	return uc.aggregator.AggregateRange(dateRange.Start, dateRange.End, reports), nil
}
