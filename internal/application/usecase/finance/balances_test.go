package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

func TestGetDoctorLedger(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()

	doctor := f.seedDoctor(t, "1000.00")
	other := f.seedDoctor(t, "0")
	if _, err := f.record.RecordSalary(ctx, day("2024-09-01"), doctor.ID, dec("200.00"), nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("admin reads any ledger", func(t *testing.T) {
		ledger, err := f.ledger.Execute(ctx, GetDoctorLedgerInput{DoctorID: doctor.ID, RequesterRole: entity.UserRoleAdmin})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ledger.Doctor.Balance.Equal(dec("800")) {
			t.Errorf("expected balance 800, got %s", ledger.Doctor.Balance)
		}
		if len(ledger.Entries) != 1 || ledger.Entries[0].Kind != entity.BalanceEntrySalaryDebit {
			t.Errorf("expected one salary debit entry, got %+v", ledger.Entries)
		}
	})

	t.Run("doctor reads own ledger", func(t *testing.T) {
		_, err := f.ledger.Execute(ctx, GetDoctorLedgerInput{
			DoctorID:      doctor.ID,
			RequesterID:   doctor.ID,
			RequesterRole: entity.UserRoleDoctor,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("doctor cannot read another ledger", func(t *testing.T) {
		_, err := f.ledger.Execute(ctx, GetDoctorLedgerInput{
			DoctorID:      doctor.ID,
			RequesterID:   other.ID,
			RequesterRole: entity.UserRoleDoctor,
		})
		var authErr *domainerror.AuthError
		if !errors.As(err, &authErr) || authErr.Code != domainerror.ErrCodeForbiddenRole {
			t.Errorf("expected forbidden role error, got %v", err)
		}
	})

	t.Run("unknown doctor", func(t *testing.T) {
		_, err := f.ledger.Execute(ctx, GetDoctorLedgerInput{DoctorID: 999, RequesterRole: entity.UserRoleAdmin})
		expectFinanceCode(t, err, domainerror.ErrCodeDoctorNotFound)
	})
}

func TestReconcileBalances(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := context.Background()

	doctor := f.seedDoctor(t, "1000.00")
	service := f.seedService(t, "300.00", "50")
	appointment := f.seedAppointment(t, doctor, service, "300.00")

	if _, err := f.record.RecordProfit(ctx, day("2024-10-01"), appointment.ID, dec("300.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.record.RecordSalary(ctx, day("2024-10-02"), doctor.ID, dec("400.00"), nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("consistent ledger", func(t *testing.T) {
		out, err := f.reconcile.Execute(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.DoctorsChecked != 1 || len(out.Discrepancies) != 0 {
			t.Errorf("expected 1 doctor and no discrepancies, got %d and %d", out.DoctorsChecked, len(out.Discrepancies))
		}
		if balance := f.doctorBalance(t, doctor.ID); !balance.Equal(dec("750")) {
			t.Errorf("expected balance 750, got %s", balance)
		}
	})

	t.Run("detects a balance edited outside the ledger", func(t *testing.T) {
		if err := f.db.Exec("UPDATE doctors SET balance = ? WHERE id = ?", "999.00", doctor.ID).Error; err != nil {
			t.Fatalf("failed to tamper balance: %v", err)
		}

		out, err := f.reconcile.Execute(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Discrepancies) != 1 {
			t.Fatalf("expected 1 discrepancy, got %d", len(out.Discrepancies))
		}
		d := out.Discrepancies[0]
		if !d.ExpectedBalance.Equal(dec("750")) || !d.RecordedBalance.Equal(dec("999")) {
			t.Errorf("expected 750 vs 999, got %s vs %s", d.ExpectedBalance, d.RecordedBalance)
		}

		f.notifier.mu.Lock()
		defer f.notifier.mu.Unlock()
		if len(f.notifier.discrepancies) != 1 {
			t.Errorf("expected discrepancy alert, got %d", len(f.notifier.discrepancies))
		}
	})
}

func TestReplayBalance(t *testing.T) {
	doctor := &entity.Doctor{ID: 1, FirstName: "Ana", Balance: dec("150")}

	first := entity.NewBalanceEntry(1, entity.BalanceEntryProfitShare, 1, dec("100"), dec("80"))
	second := entity.NewBalanceEntry(1, entity.BalanceEntrySalaryDebit, 1, dec("180"), dec("-30"))

	t.Run("no entries is consistent", func(t *testing.T) {
		if d := ReplayBalance(doctor, nil); d != nil {
			t.Errorf("expected nil, got %+v", d)
		}
	})

	t.Run("continuous chain", func(t *testing.T) {
		if d := ReplayBalance(doctor, []*entity.BalanceEntry{first, second}); d != nil {
			t.Errorf("expected nil, got %+v", d)
		}
	})

	t.Run("broken chain", func(t *testing.T) {
		gap := &entity.BalanceEntry{
			ID:            uuid.New(),
			DoctorID:      1,
			Kind:          entity.BalanceEntrySalaryDebit,
			Delta:         dec("-30"),
			BalanceBefore: dec("200"),
			BalanceAfter:  dec("170"),
		}
		d := ReplayBalance(doctor, []*entity.BalanceEntry{first, gap})
		if d == nil {
			t.Fatal("expected discrepancy")
		}
		if d.BrokenChainAt == nil || *d.BrokenChainAt != gap.ID {
			t.Errorf("expected chain broken at %s, got %v", gap.ID, d.BrokenChainAt)
		}
		if d.EntryCount != 2 {
			t.Errorf("expected 2 entries, got %d", d.EntryCount)
		}
	})
}
