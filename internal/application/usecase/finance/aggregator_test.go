package finance

import (
	"testing"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

func TestAggregator_Aggregate(t *testing.T) {
	a := NewAggregator()
	salaryID := uint(4)

	report := &entity.ReportWithEvents{
		Report: &entity.Report{ID: 1, Date: day("2024-01-01")},
		Profits: []*entity.ProfitWithAppointment{
			{Profit: &entity.Profit{ID: 1, Amount: dec("100.50")}},
			{Profit: &entity.Profit{ID: 2, Amount: dec("49.50")}},
		},
		Consumptions: []*entity.Consumption{
			{ID: 1, Title: "Gloves", Amount: dec("10.25")},
			{ID: 2, Title: "Salary: Ana", Amount: dec("19.75"), SalaryID: &salaryID},
		},
	}

	view := a.Aggregate(report)
	if !view.Totals.TotalProfit.Equal(dec("150")) {
		t.Errorf("expected total profit 150, got %s", view.Totals.TotalProfit)
	}
	if !view.Totals.TotalConsumption.Equal(dec("30")) {
		t.Errorf("expected total consumption 30, got %s", view.Totals.TotalConsumption)
	}
	if !view.Totals.NetProfit.Equal(dec("120")) {
		t.Errorf("expected net profit 120, got %s", view.Totals.NetProfit)
	}
}

func TestAggregator_EmptyReport(t *testing.T) {
	view := NewAggregator().Aggregate(&entity.ReportWithEvents{Report: &entity.Report{ID: 1}})

	if !view.Totals.NetProfit.IsZero() {
		t.Errorf("expected zero net, got %s", view.Totals.NetProfit)
	}
	if view.Profits == nil || view.Consumptions == nil {
		t.Error("expected non-nil event slices")
	}
}

func TestAggregator_AggregateRange(t *testing.T) {
	a := NewAggregator()
	reports := []*entity.ReportWithEvents{
		{
			Report:       &entity.Report{ID: 1, Date: day("2024-01-01")},
			Profits:      []*entity.ProfitWithAppointment{{Profit: &entity.Profit{Amount: dec("150")}}},
			Consumptions: []*entity.Consumption{{Amount: dec("30")}},
		},
		{
			Report:       &entity.Report{ID: 2, Date: day("2024-01-02")},
			Consumptions: []*entity.Consumption{{Amount: dec("30")}},
		},
	}

	result := a.AggregateRange(day("2024-01-01"), day("2024-01-02"), reports)
	if len(result.Reports) != 2 {
		t.Fatalf("expected 2 views, got %d", len(result.Reports))
	}
	if !result.Reports[1].Totals.NetProfit.Equal(dec("-30")) {
		t.Errorf("expected second day net -30, got %s", result.Reports[1].Totals.NetProfit)
	}
	if !result.Totals.NetProfit.Equal(dec("90")) {
		t.Errorf("expected range net 90, got %s", result.Totals.NetProfit)
	}
}
