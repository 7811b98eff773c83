package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// Aggregator computes report totals from loaded events. It never touches storage.
type Aggregator struct{}

// NewAggregator creates a new Aggregator instance.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate builds the view of a single report.
// Salary payouts are counted through their linked consumption row only.
func (a *Aggregator) Aggregate(report *entity.ReportWithEvents) *entity.ReportView {
	totalProfit := decimal.Zero
	for _, p := range report.Profits {
		totalProfit = totalProfit.Add(p.Profit.Amount)
	}

	totalConsumption := decimal.Zero
	for _, c := range report.Consumptions {
		totalConsumption = totalConsumption.Add(c.Amount)
	}

	profits := report.Profits
	if profits == nil {
		profits = []*entity.ProfitWithAppointment{}
	}
	consumptions := report.Consumptions
	if consumptions == nil {
		consumptions = []*entity.Consumption{}
	}

	return &entity.ReportView{
		Report: report.Report,
		Totals: entity.ReportTotals{
			TotalProfit:      totalProfit,
			TotalConsumption: totalConsumption,
			NetProfit:        totalProfit.Sub(totalConsumption),
		},
		Profits:      profits,
		Consumptions: consumptions,
	}
}

// AggregateRange builds per-day views and sums them into grand totals.
func (a *Aggregator) AggregateRange(start, end time.Time, reports []*entity.ReportWithEvents) *entity.RangeReport {
	result := &entity.RangeReport{
		StartDate: start,
		EndDate:   end,
		Reports:   make([]*entity.ReportView, 0, len(reports)),
		Totals: entity.ReportTotals{
			TotalProfit:      decimal.Zero,
			TotalConsumption: decimal.Zero,
			NetProfit:        decimal.Zero,
		},
	}

	for _, report := range reports {
		view := a.Aggregate(report)
		result.Reports = append(result.Reports, view)
		result.Totals = result.Totals.Add(view.Totals)
	}

	return result
}
