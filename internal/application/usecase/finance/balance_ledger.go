package finance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// BalanceLedger applies profit shares and salary debits to doctor balances.
// Every mutation locks the doctor row and appends an immutable balance entry
// in the caller's transaction.
type BalanceLedger struct{}

// NewBalanceLedger creates a new BalanceLedger instance.
func NewBalanceLedger() *BalanceLedger {
	return &BalanceLedger{}
}

// ApplyProfitShare credits the treating doctor with the service's KPI share of a profit.
// It returns nil when no balance changed: the appointment has no doctor, no service,
// or the share rounds to zero.
func (l *BalanceLedger) ApplyProfitShare(
	ctx context.Context,
	tx adapter.FinanceTx,
	profit *entity.Profit,
	appointment *entity.Appointment,
) (*entity.BalanceEntry, error) {
	if appointment.DoctorID == nil {
		slog.Warn("Profit recorded for appointment without doctor, no balance credited",
			"appointment_id", appointment.ID,
			"profit_id", profit.ID,
		)
		return nil, nil
	}

	if appointment.ServiceID == nil {
		slog.Warn("Profit recorded for appointment without service, no balance credited",
			"appointment_id", appointment.ID,
			"profit_id", profit.ID,
		)
		return nil, nil
	}

	service, err := tx.FindService(ctx, *appointment.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	if service == nil {
		slog.Warn("Profit recorded for appointment whose service no longer exists, no balance credited",
			"appointment_id", appointment.ID,
			"service_id", *appointment.ServiceID,
		)
		return nil, nil
	}

	if !service.ValidKPIPercent() {
		return nil, domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidKPIPercent,
			"kpi_percent",
			fmt.Sprintf("service %d has kpi percent %s outside [0, 100]", service.ID, service.KPIPercent.String()),
			domainerror.ErrInvalidKPIPercent,
		)
	}

	share := service.ShareOf(profit.Amount)
	if share.IsZero() {
		return nil, nil
	}

	return l.apply(ctx, tx, *appointment.DoctorID, entity.BalanceEntryProfitShare, profit.ID, share)
}

// ApplySalaryDebit debits a salary payout from the doctor's balance.
func (l *BalanceLedger) ApplySalaryDebit(ctx context.Context, tx adapter.FinanceTx, salary *entity.Salary) (*entity.BalanceEntry, error) {
	return l.apply(ctx, tx, salary.DoctorID, entity.BalanceEntrySalaryDebit, salary.ID, salary.Amount.Neg())
}

func (l *BalanceLedger) apply(
	ctx context.Context,
	tx adapter.FinanceTx,
	doctorID uint,
	kind entity.BalanceEntryKind,
	sourceID uint,
	delta decimal.Decimal,
) (*entity.BalanceEntry, error) {
	doctor, err := tx.LockDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	entry := entity.NewBalanceEntry(doctor.ID, kind, sourceID, doctor.Balance, delta)

	if err := tx.UpdateDoctorBalance(ctx, doctor.ID, entry.BalanceAfter); err != nil {
		return nil, fmt.Errorf("failed to update doctor balance: %w", err)
	}
	if err := tx.AppendBalanceEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append balance entry: %w", err)
	}
	doctor.Balance = entry.BalanceAfter

	slog.Debug("Doctor balance updated",
		"doctor_id", doctor.ID,
		"kind", kind,
		"delta", delta.StringFixed(2),
		"balance", entry.BalanceAfter.StringFixed(2),
	)

	return entry, nil
}
