package finance

import (
	"context"
	"log/slog"

	"github.com/dental-clinic/backend/internal/application/adapter"
)

// RecomputeAppointmentStatusInput represents the input for re-deriving an appointment status.
type RecomputeAppointmentStatusInput struct {
	AppointmentID uint
}

// RecomputeAppointmentStatusUseCase re-derives an appointment's payment status
// from its recorded profits, repairing drift after manual data fixes.
type RecomputeAppointmentStatusUseCase struct {
	store    adapter.FinanceStore
	notifier adapter.Notifier
	tracker  *StatusTracker
}

// NewRecomputeAppointmentStatusUseCase creates a new RecomputeAppointmentStatusUseCase instance.
func NewRecomputeAppointmentStatusUseCase(store adapter.FinanceStore, notifier adapter.Notifier) *RecomputeAppointmentStatusUseCase {
	return &RecomputeAppointmentStatusUseCase{
		store:    store,
		notifier: notifier,
		tracker:  NewStatusTracker(),
	}
}

// Execute performs the recomputation.
func (uc *RecomputeAppointmentStatusUseCase) Execute(ctx context.Context, input RecomputeAppointmentStatusInput) (*StatusChange, error) {
	ctx, span := tracer.Start(ctx, "finance.RecomputeAppointmentStatus")
	defer span.End()

	if input.AppointmentID == 0 {
		return nil, missingFieldError("appointment_id")
	}

	var change *StatusChange
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx adapter.FinanceTx) error {
		appointment, err := tx.LockAppointment(ctx, input.AppointmentID)
		if err != nil {
			return err
		}
		change, err = uc.tracker.Recompute(ctx, tx, appointment)
		return err
	})
	if err != nil {
		return nil, toFinanceError(err)
	}

	if change.Overpaid && uc.notifier != nil {
		if err := uc.notifier.NotifyOverpayment(ctx, adapter.OverpaymentInput{
			AppointmentID: change.AppointmentID,
			Price:         change.Price,
			TotalPaid:     change.TotalPaid,
		}); err != nil {
			slog.Error("Failed to queue overpayment review", "appointment_id", change.AppointmentID, "error", err)
		}
	}

	return change, nil
}
