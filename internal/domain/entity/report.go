// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportDateLayout is the wire format of report dates.
const ReportDateLayout = "2006-01-02"

// Report is the per-calendar-day aggregation root for financial events.
type Report struct {
	ID        uint
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profit is a payment received against an appointment.
type Profit struct {
	ID            uint
	ReportID      uint
	AppointmentID uint
	Amount        decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Consumption is an operating expense booked on a report.
// SalaryID is set when the consumption books a salary payout.
type Consumption struct {
	ID          uint
	ReportID    uint
	Title       string
	Description *string
	Amount      decimal.Decimal
	SalaryID    *uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Salary is a payout to a doctor, decreasing the doctor's balance.
type Salary struct {
	ID        uint
	DoctorID  uint
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfitWithAppointment is a profit with its appointment loaded.
type ProfitWithAppointment struct {
	Profit      *Profit
	Appointment *Appointment
}

// ReportWithEvents is a report with all of its events loaded.
type ReportWithEvents struct {
	Report       *Report
	Profits      []*ProfitWithAppointment
	Consumptions []*Consumption
}

// ReportTotals represents aggregated totals for one report or a range of reports.
type ReportTotals struct {
	TotalProfit      decimal.Decimal
	TotalConsumption decimal.Decimal
	NetProfit        decimal.Decimal
}

// Add returns the element-wise sum of two totals.
func (t ReportTotals) Add(other ReportTotals) ReportTotals {
	return ReportTotals{
		TotalProfit:      t.TotalProfit.Add(other.TotalProfit),
		TotalConsumption: t.TotalConsumption.Add(other.TotalConsumption),
		NetProfit:        t.NetProfit.Add(other.NetProfit),
	}
}

// ReportView is a report together with its events and freshly computed totals.
type ReportView struct {
	Report       *Report
	Totals       ReportTotals
	Profits      []*ProfitWithAppointment
	Consumptions []*Consumption
}

// RangeReport is the aggregation of all reports within a date range.
type RangeReport struct {
	StartDate time.Time
	EndDate   time.Time
	Reports   []*ReportView
	Totals    ReportTotals
}

// NormalizeDate truncates t to midnight UTC of its calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
