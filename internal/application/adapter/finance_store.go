// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// FinanceStore runs financial writes atomically.
type FinanceStore interface {
	// WithinTx runs fn inside a single database transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise. A conflicting
	// concurrent write is retried once before a conflict error is returned.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx FinanceTx) error) error
}

// FinanceTx exposes the writes and locked reads available inside a financial transaction.
type FinanceTx interface {
	// UpsertReport finds or creates the report for a calendar date.
	UpsertReport(ctx context.Context, date time.Time) (*entity.Report, error)

	// CreateProfit inserts a profit and sets its ID.
	CreateProfit(ctx context.Context, profit *entity.Profit) error

	// CreateConsumption inserts a consumption and sets its ID.
	CreateConsumption(ctx context.Context, consumption *entity.Consumption) error

	// CreateSalary inserts a salary and sets its ID.
	CreateSalary(ctx context.Context, salary *entity.Salary) error

	// LockAppointment loads an appointment and locks its row until the transaction ends.
	LockAppointment(ctx context.Context, id uint) (*entity.Appointment, error)

	// SumAppointmentProfits returns the sum of all profits recorded against an appointment.
	SumAppointmentProfits(ctx context.Context, appointmentID uint) (decimal.Decimal, error)

	// UpdateAppointmentStatus persists a new appointment status.
	UpdateAppointmentStatus(ctx context.Context, appointmentID uint, status entity.AppointmentStatus) error

	// LockDoctor loads a doctor and locks its row until the transaction ends.
	LockDoctor(ctx context.Context, id uint) (*entity.Doctor, error)

	// UpdateDoctorBalance persists a new doctor balance.
	UpdateDoctorBalance(ctx context.Context, doctorID uint, balance decimal.Decimal) error

	// FindService retrieves a service by ID, returning nil when it does not exist.
	FindService(ctx context.Context, id uint) (*entity.Service, error)

	// AppendBalanceEntry stores an immutable balance fact.
	AppendBalanceEntry(ctx context.Context, entry *entity.BalanceEntry) error

	// AppendOutboxEvent stores an event for asynchronous publication.
	AppendOutboxEvent(ctx context.Context, event *entity.OutboxEvent) error
}
