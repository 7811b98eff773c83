// Package entity defines the core business entities for the domain layer.
package entity

import (
	"github.com/shopspring/decimal"
)

// FinancialEventKind tags the variant of a FinancialEvent.
type FinancialEventKind string

const (
	FinancialEventProfit      FinancialEventKind = "profit"
	FinancialEventConsumption FinancialEventKind = "consumption"
	FinancialEventSalary      FinancialEventKind = "salary"
)

// FinancialEvent is a money movement recorded on a daily report.
// Exactly one of Profit, Consumption or Salary is set, matching Kind.
type FinancialEvent struct {
	Kind        FinancialEventKind
	Profit      *ProfitEvent
	Consumption *ConsumptionEvent
	Salary      *SalaryEvent
}

// ProfitEvent is the payload of a payment against an appointment.
type ProfitEvent struct {
	AppointmentID uint
	Amount        decimal.Decimal
}

// ConsumptionEvent is the payload of an operating expense.
type ConsumptionEvent struct {
	Title       string
	Description *string
	Amount      decimal.Decimal
}

// SalaryEvent is the payload of a salary payout to a doctor.
type SalaryEvent struct {
	DoctorID    uint
	Amount      decimal.Decimal
	Title       *string
	Description *string
}

// NewProfitEvent creates a profit event.
func NewProfitEvent(appointmentID uint, amount decimal.Decimal) FinancialEvent {
	return FinancialEvent{
		Kind:   FinancialEventProfit,
		Profit: &ProfitEvent{AppointmentID: appointmentID, Amount: amount},
	}
}

// NewConsumptionEvent creates a consumption event.
func NewConsumptionEvent(title string, description *string, amount decimal.Decimal) FinancialEvent {
	return FinancialEvent{
		Kind:        FinancialEventConsumption,
		Consumption: &ConsumptionEvent{Title: title, Description: description, Amount: amount},
	}
}

// NewSalaryEvent creates a salary event.
func NewSalaryEvent(doctorID uint, amount decimal.Decimal, title, description *string) FinancialEvent {
	return FinancialEvent{
		Kind:   FinancialEventSalary,
		Salary: &SalaryEvent{DoctorID: doctorID, Amount: amount, Title: title, Description: description},
	}
}
