// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/application/usecase/finance"
	"github.com/dental-clinic/backend/internal/domain/entity"
)

// RecordProfitRequest represents the request body for recording a payment.
// Amounts accept both JSON numbers and decimal strings.
type RecordProfitRequest struct {
	Date          string          `json:"date" binding:"required"`
	AppointmentID uint            `json:"appointment_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// RecordConsumptionRequest represents the request body for recording an expense.
type RecordConsumptionRequest struct {
	Date        string          `json:"date" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// RecordSalaryRequest represents the request body for recording a salary payout.
type RecordSalaryRequest struct {
	Date        string          `json:"date" binding:"required"`
	DoctorID    uint            `json:"doctor_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
}

// ReportRangeQuery represents the query parameters for a range of reports.
type ReportRangeQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ReportTotalsResponse represents aggregated report totals.
type ReportTotalsResponse struct {
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TotalConsumption decimal.Decimal `json:"total_consumption"`
	NetProfit        decimal.Decimal `json:"net_profit"`
}

// ProfitResponse represents a profit in API responses.
type ProfitResponse struct {
	ID            uint                 `json:"id"`
	AppointmentID uint                 `json:"appointment_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Appointment   *AppointmentResponse `json:"appointment,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// ConsumptionResponse represents a consumption in API responses.
type ConsumptionResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	SalaryID    *uint           `json:"salary_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReportResponse represents a daily report with its events and totals.
type ReportResponse struct {
	ID   uint   `json:"id"`
	Date string `json:"date"`
	ReportTotalsResponse
	Profits      []ProfitResponse      `json:"profits"`
	Consumptions []ConsumptionResponse `json:"consumptions"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// RecordEventResponse represents the outcome of recording a financial event.
type RecordEventResponse struct {
	ReportResponse
	StatusChange *StatusChangeResponse `json:"status_change,omitempty"`
	BalanceEntry *BalanceEntryResponse `json:"balance_entry,omitempty"`
}

// RangeReportResponse represents the aggregation of reports within a date range.
type RangeReportResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	ReportTotalsResponse
	Reports []ReportResponse `json:"reports"`
}

// ToReportTotalsResponse converts report totals to a DTO.
func ToReportTotalsResponse(t entity.ReportTotals) ReportTotalsResponse {
	return ReportTotalsResponse{
		TotalProfit:      t.TotalProfit,
		TotalConsumption: t.TotalConsumption,
		NetProfit:        t.NetProfit,
	}
}

// ToReportResponse converts a report view to a ReportResponse DTO.
func ToReportResponse(v *entity.ReportView) ReportResponse {
	response := ReportResponse{
		ID:                   v.Report.ID,
		Date:                 v.Report.Date.Format(entity.ReportDateLayout),
		ReportTotalsResponse: ToReportTotalsResponse(v.Totals),
		Profits:              make([]ProfitResponse, 0, len(v.Profits)),
		Consumptions:         make([]ConsumptionResponse, 0, len(v.Consumptions)),
		CreatedAt:            v.Report.CreatedAt,
		UpdatedAt:            v.Report.UpdatedAt,
	}

	for _, p := range v.Profits {
		profit := ProfitResponse{
			ID:            p.Profit.ID,
			AppointmentID: p.Profit.AppointmentID,
			Amount:        p.Profit.Amount,
			CreatedAt:     p.Profit.CreatedAt,
		}
		if p.Appointment != nil {
			appointment := ToAppointmentResponse(p.Appointment)
			profit.Appointment = &appointment
		}
		response.Profits = append(response.Profits, profit)
	}

	for _, c := range v.Consumptions {
		response.Consumptions = append(response.Consumptions, ConsumptionResponse{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Amount:      c.Amount,
			SalaryID:    c.SalaryID,
			CreatedAt:   c.CreatedAt,
		})
	}

	return response
}

// ToRecordEventResponse converts a record event output to a DTO.
func ToRecordEventResponse(output *finance.RecordEventOutput) RecordEventResponse {
	response := RecordEventResponse{
		ReportResponse: ToReportResponse(output.Report),
	}
	if output.StatusChange != nil {
		change := ToStatusChangeResponse(output.StatusChange)
		response.StatusChange = &change
	}
	if output.BalanceEntry != nil {
		entry := ToBalanceEntryResponse(output.BalanceEntry)
		response.BalanceEntry = &entry
	}
	return response
}

// ToRangeReportResponse converts a range report to a DTO.
func ToRangeReportResponse(r *entity.RangeReport) RangeReportResponse {
	response := RangeReportResponse{
		StartDate:            r.StartDate.Format(entity.ReportDateLayout),
		EndDate:              r.EndDate.Format(entity.ReportDateLayout),
		ReportTotalsResponse: ToReportTotalsResponse(r.Totals),
		Reports:              make([]ReportResponse, 0, len(r.Reports)),
	}
	for _, v := range r.Reports {
		response.Reports = append(response.Reports, ToReportResponse(v))
	}
	return response
}
