package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

func TestFinanceStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("conflict is retried once then surfaces a conflict error", func(t *testing.T) {
		store := NewFinanceStore(newTestDB(t), nil)

		calls := 0
		err := store.WithinTx(ctx, func(ctx context.Context, tx adapter.FinanceTx) error {
			calls++
			return gorm.ErrDuplicatedKey
		})

		if calls != 2 {
			t.Errorf("expected 2 attempts, got %d", calls)
		}
		var financeErr *domainerror.FinanceError
		if !errors.As(err, &financeErr) {
			t.Fatalf("expected FinanceError, got %T: %v", err, err)
		}
		if financeErr.Code != domainerror.ErrCodeReportConflict {
			t.Errorf("expected code %s, got %s", domainerror.ErrCodeReportConflict, financeErr.Code)
		}
		if financeErr.Kind() != domainerror.FinanceErrorConflict {
			t.Errorf("expected conflict kind, got %s", financeErr.Kind())
		}
		if !errors.Is(err, domainerror.ErrReportConflict) {
			t.Error("expected error to wrap ErrReportConflict")
		}
	})

	t.Run("retry starts from a rolled back transaction", func(t *testing.T) {
		db := newTestDB(t)
		store := NewFinanceStore(db, nil)
		date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

		calls := 0
		err := store.WithinTx(ctx, func(ctx context.Context, tx adapter.FinanceTx) error {
			calls++
			if calls == 1 {
				if _, err := tx.UpsertReport(ctx, date); err != nil {
					return err
				}
				return gorm.ErrDuplicatedKey
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 attempts, got %d", calls)
		}

		var n int64
		if err := db.Model(&model.ReportModel{}).Count(&n).Error; err != nil {
			t.Fatalf("failed to count reports: %v", err)
		}
		if n != 0 {
			t.Errorf("expected first attempt rolled back, found %d reports", n)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		store := NewFinanceStore(newTestDB(t), nil)
		boom := errors.New("boom")

		calls := 0
		err := store.WithinTx(ctx, func(ctx context.Context, tx adapter.FinanceTx) error {
			calls++
			return boom
		})

		if calls != 1 {
			t.Errorf("expected 1 attempt, got %d", calls)
		}
		if !errors.Is(err, boom) {
			t.Errorf("expected original error, got %v", err)
		}
	})
}

func TestFinanceTx_AppendBalanceEntry(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := NewFinanceStore(db, nil)
	repo := NewDoctorRepository(db)

	ana := seedDoctor(t, db, "Ana", "Lima")
	rui := seedDoctor(t, db, "Rui", "Costa")

	// Later entries carry earlier timestamps to show ordering does not depend on the clock.
	base := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	balance := decimal.Zero
	for i, delta := range []string{"80", "-30", "15"} {
		entry := entity.NewBalanceEntry(ana.ID, entity.BalanceEntryProfitShare, uint(i+1), balance, decimal.RequireFromString(delta))
		entry.CreatedAt = base.Add(-time.Duration(i) * time.Second)
		balance = entry.BalanceAfter

		err := store.WithinTx(ctx, func(ctx context.Context, tx adapter.FinanceTx) error {
			return tx.AppendBalanceEntry(ctx, entry)
		})
		if err != nil {
			t.Fatalf("unexpected error appending entry %d: %v", i, err)
		}
		if entry.Sequence != uint64(i+1) {
			t.Errorf("expected sequence %d, got %d", i+1, entry.Sequence)
		}
	}

	other := entity.NewBalanceEntry(rui.ID, entity.BalanceEntrySalaryDebit, 1, decimal.Zero, decimal.RequireFromString("-10"))
	err := store.WithinTx(ctx, func(ctx context.Context, tx adapter.FinanceTx) error {
		return tx.AppendBalanceEntry(ctx, other)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.Sequence != 1 {
		t.Errorf("expected each doctor to start at sequence 1, got %d", other.Sequence)
	}

	entries, err := repo.ListBalanceEntries(ctx, ana.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.Sequence != uint64(i+1) {
			t.Errorf("expected entry %d to have sequence %d, got %d", i, i+1, entry.Sequence)
		}
		if i > 0 && !entry.BalanceBefore.Equal(entries[i-1].BalanceAfter) {
			t.Errorf("entry %d does not continue the chain: %s after %s", i, entry.BalanceBefore, entries[i-1].BalanceAfter)
		}
	}
}
