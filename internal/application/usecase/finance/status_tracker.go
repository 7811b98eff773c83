package finance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
)

// StatusChange describes the outcome of re-deriving an appointment status.
type StatusChange struct {
	AppointmentID uint
	Previous      entity.AppointmentStatus
	Current       entity.AppointmentStatus
	Price         decimal.Decimal
	TotalPaid     decimal.Decimal
	Overpaid      bool
}

// Changed reports whether the status was modified.
func (c *StatusChange) Changed() bool {
	return c.Previous != c.Current
}

// StatusTracker keeps appointment payment status consistent with recorded profits.
type StatusTracker struct{}

// NewStatusTracker creates a new StatusTracker instance.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{}
}

// Recompute sums the appointment's profits inside tx and persists the derived status.
// The appointment must have been locked by the caller.
func (t *StatusTracker) Recompute(ctx context.Context, tx adapter.FinanceTx, appointment *entity.Appointment) (*StatusChange, error) {
	total, err := tx.SumAppointmentProfits(ctx, appointment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum appointment profits: %w", err)
	}

	status, overpaid := entity.DerivePaymentStatus(appointment.Status, appointment.Price, total)
	change := &StatusChange{
		AppointmentID: appointment.ID,
		Previous:      appointment.Status,
		Current:       status,
		Price:         appointment.Price,
		TotalPaid:     total,
		Overpaid:      overpaid,
	}

	if overpaid {
		slog.Warn("Appointment overpaid, flagged for manual review",
			"appointment_id", appointment.ID,
			"price", appointment.Price.StringFixed(2),
			"total_paid", total.StringFixed(2),
		)
	}

	if !change.Changed() {
		return change, nil
	}

	if err := tx.UpdateAppointmentStatus(ctx, appointment.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	appointment.Status = status

	slog.Debug("Appointment status updated",
		"appointment_id", appointment.ID,
		"from", change.Previous,
		"to", change.Current,
	)

	return change, nil
}
