package finance

import (
	"context"
	"testing"
	"time"

	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

func TestGetReport(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()

	t.Run("missing date is not found", func(t *testing.T) {
		_, err := f.getReport.Execute(ctx, GetReportInput{Date: day("2024-07-01")})
		expectFinanceCode(t, err, domainerror.ErrCodeReportNotFound)
	})

	t.Run("returns profits with their appointments", func(t *testing.T) {
		appointment := f.seedAppointment(t, nil, nil, "80.00")
		if _, err := f.record.RecordProfit(ctx, day("2024-07-02"), appointment.ID, dec("80.00")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// A time of day on the same calendar date resolves to the same report.
		view, err := f.getReport.Execute(ctx, GetReportInput{Date: day("2024-07-02").Add(15 * time.Hour)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(view.Profits) != 1 {
			t.Fatalf("expected 1 profit, got %d", len(view.Profits))
		}
		if view.Profits[0].Appointment == nil || view.Profits[0].Appointment.ID != appointment.ID {
			t.Errorf("expected profit appointment %d to be loaded", appointment.ID)
		}
		if view.Consumptions == nil {
			t.Error("expected empty consumptions slice, got nil")
		}
	})
}

func TestGetReportsInRange(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()

	appointment := f.seedAppointment(t, nil, nil, "150.00")
	if _, err := f.record.RecordProfit(ctx, day("2024-01-01"), appointment.ID, dec("150.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.record.RecordConsumption(ctx, day("2024-01-01"), "Gloves", nil, dec("30.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.record.RecordConsumption(ctx, day("2024-01-02"), "Rent", nil, dec("30.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.record.RecordConsumption(ctx, day("2024-01-05"), "Outside range", nil, dec("1000.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("sums daily nets", func(t *testing.T) {
		result, err := f.getRange.Execute(ctx, GetReportsInRangeInput{StartDate: day("2024-01-01"), EndDate: day("2024-01-02")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Reports) != 2 {
			t.Fatalf("expected 2 reports, got %d", len(result.Reports))
		}
		if !result.Reports[0].Report.Date.Before(result.Reports[1].Report.Date) {
			t.Error("expected reports ordered by date")
		}
		if !result.Totals.NetProfit.Equal(dec("90")) {
			t.Errorf("expected net profit 90, got %s", result.Totals.NetProfit)
		}
		if !result.Totals.TotalConsumption.Equal(dec("60")) {
			t.Errorf("expected total consumption 60, got %s", result.Totals.TotalConsumption)
		}
	})

	t.Run("empty range has zero totals", func(t *testing.T) {
		result, err := f.getRange.Execute(ctx, GetReportsInRangeInput{StartDate: day("2023-01-01"), EndDate: day("2023-01-31")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Reports) != 0 || !result.Totals.NetProfit.IsZero() {
			t.Errorf("expected empty result, got %d reports and net %s", len(result.Reports), result.Totals.NetProfit)
		}
	})
}

// panicReportRepository fails any query.
type panicReportRepository struct{}

func (panicReportRepository) GetByDate(context.Context, time.Time) (*entity.ReportWithEvents, error) {
	panic("repository must not be queried")
}

func (panicReportRepository) GetInRange(context.Context, time.Time, time.Time) ([]*entity.ReportWithEvents, error) {
	panic("repository must not be queried")
}

func TestGetReportsInRange_Validation(t *testing.T) {
	uc := NewGetReportsInRangeUseCase(panicReportRepository{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input GetReportsInRangeInput
	}{
		{name: "start after end", input: GetReportsInRangeInput{StartDate: day("2024-02-02"), EndDate: day("2024-02-01")}},
		{name: "missing end", input: GetReportsInRangeInput{StartDate: day("2024-02-02")}},
		{name: "range too long", input: GetReportsInRangeInput{StartDate: day("2022-01-01"), EndDate: day("2024-01-01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.input)
			expectFinanceCode(t, err, domainerror.ErrCodeInvalidDateRange)
		})
	}
}

func TestRecomputeAppointmentStatus(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()
	appointment := f.seedAppointment(t, nil, nil, "100.00")

	if _, err := f.record.RecordProfit(ctx, day("2024-08-01"), appointment.ID, dec("100.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate a manual data fix that left the status stale.
	if err := f.db.Exec("UPDATE appointments SET status = ? WHERE id = ?", "pending", appointment.ID).Error; err != nil {
		t.Fatalf("failed to reset status: %v", err)
	}

	t.Run("repairs the stale status", func(t *testing.T) {
		change, err := f.recompute.Execute(ctx, RecomputeAppointmentStatusInput{AppointmentID: appointment.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if change.Previous != entity.AppointmentStatusPending || change.Current != entity.AppointmentStatusFullyPaid {
			t.Errorf("expected pending -> fully_paid, got %s -> %s", change.Previous, change.Current)
		}
		if status := f.appointmentStatus(t, appointment.ID); status != entity.AppointmentStatusFullyPaid {
			t.Errorf("expected fully_paid, got %s", status)
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		change, err := f.recompute.Execute(ctx, RecomputeAppointmentStatusInput{AppointmentID: appointment.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if change.Changed() {
			t.Errorf("expected no change, got %s -> %s", change.Previous, change.Current)
		}
	})

	t.Run("unknown appointment", func(t *testing.T) {
		_, err := f.recompute.Execute(ctx, RecomputeAppointmentStatusInput{AppointmentID: 4242})
		expectFinanceCode(t, err, domainerror.ErrCodeAppointmentNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := f.recompute.Execute(ctx, RecomputeAppointmentStatusInput{})
		expectFinanceCode(t, err, domainerror.ErrCodeMissingFinanceFields)
	})
}

func TestAppointmentSave_RederivesStatus(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()
	appointment := f.seedAppointment(t, nil, nil, "100.00")

	if _, err := f.record.RecordProfit(ctx, day("2024-08-02"), appointment.ID, dec("100.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Raising the price turns a fully paid appointment into a partially paid one.
	appointment.Price = dec("250.00")
	appointment.Status = entity.AppointmentStatusFullyPaid
	if err := f.appointments.Save(ctx, appointment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.Status != entity.AppointmentStatusPartiallyPaid {
		t.Errorf("expected partially_paid on the entity, got %s", appointment.Status)
	}
	if status := f.appointmentStatus(t, appointment.ID); status != entity.AppointmentStatusPartiallyPaid {
		t.Errorf("expected stored partially_paid, got %s", status)
	}

	listed, err := NewListAppointmentsUseCase(f.appointments).Execute(ctx, ListAppointmentsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listed) != 1 || !listed[0].TotalPaid.Equal(dec("100")) {
		t.Fatalf("expected one appointment with 100 paid, got %+v", listed)
	}
	if listed[0].Patient == nil {
		t.Error("expected patient to be loaded")
	}
}
