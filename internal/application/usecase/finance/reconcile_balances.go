package finance

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// ReconcileBalancesOutput represents the outcome of a reconciliation run.
type ReconcileBalancesOutput struct {
	DoctorsChecked int
	Discrepancies  []*entity.BalanceDiscrepancy
}

// ReconcileBalancesUseCase replays every doctor's balance facts and compares
// the result with the stored balance.
type ReconcileBalancesUseCase struct {
	doctorRepo adapter.DoctorRepository
	notifier   adapter.Notifier
}

// NewReconcileBalancesUseCase creates a new ReconcileBalancesUseCase instance.
func NewReconcileBalancesUseCase(doctorRepo adapter.DoctorRepository, notifier adapter.Notifier) *ReconcileBalancesUseCase {
	return &ReconcileBalancesUseCase{
		doctorRepo: doctorRepo,
		notifier:   notifier,
	}
}

// Execute performs the reconciliation.
func (uc *ReconcileBalancesUseCase) Execute(ctx context.Context) (*ReconcileBalancesOutput, error) {
	ctx, span := tracer.Start(ctx, "finance.ReconcileBalances")
	defer span.End()

	doctors, err := uc.doctorRepo.FindAll(ctx)
	if err != nil {
		return nil, domainerror.NewFinanceInternalError("failed to load doctors", err)
	}

	output := &ReconcileBalancesOutput{
		Discrepancies: []*entity.BalanceDiscrepancy{},
	}

	for _, doctor := range doctors {
		entries, err := uc.doctorRepo.ListBalanceEntries(ctx, doctor.ID)
		if err != nil {
			return nil, domainerror.NewFinanceInternalError("failed to load balance entries", err)
		}
		output.DoctorsChecked++

		if d := ReplayBalance(doctor, entries); d != nil {
			output.Discrepancies = append(output.Discrepancies, d)
		}
	}

	span.SetAttributes(
		attribute.Int("finance.doctors_checked", output.DoctorsChecked),
		attribute.Int("finance.discrepancies", len(output.Discrepancies)),
	)

	if len(output.Discrepancies) == 0 {
		slog.Info("Doctor balances reconciled", "doctors", output.DoctorsChecked)
		return output, nil
	}

	slog.Warn("Doctor balance discrepancies found",
		"doctors", output.DoctorsChecked,
		"discrepancies", len(output.Discrepancies),
	)

	if uc.notifier != nil {
		if err := uc.notifier.NotifyBalanceDiscrepancies(ctx, output.Discrepancies); err != nil {
			slog.Error("Failed to queue balance discrepancy alert", "error", err)
		}
	}

	return output, nil
}

// ReplayBalance re-derives a doctor's balance from its facts. The replay opens
// at the first entry's BalanceBefore so balances that predate the ledger are
// accepted. It returns nil when the doctor's balance matches the replay and the
// chain of facts is continuous.
func ReplayBalance(doctor *entity.Doctor, entries []*entity.BalanceEntry) *entity.BalanceDiscrepancy {
	if len(entries) == 0 {
		return nil
	}

	expected := entries[0].BalanceBefore
	var brokenAt *entity.BalanceEntry
	for _, entry := range entries {
		if brokenAt == nil && !entry.BalanceBefore.Equal(expected) {
			brokenAt = entry
		}
		expected = expected.Add(entry.Delta)
	}

	if brokenAt == nil && expected.Equal(doctor.Balance) {
		return nil
	}

	d := &entity.BalanceDiscrepancy{
		DoctorID:        doctor.ID,
		DoctorName:      doctor.FullName(),
		RecordedBalance: doctor.Balance,
		ExpectedBalance: expected,
		EntryCount:      len(entries),
	}
	if brokenAt != nil {
		id := brokenAt.ID
		d.BrokenChainAt = &id
	}
	return d
}
