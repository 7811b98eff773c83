// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

// Postgres SQLSTATE codes that signal a write lost a race with another transaction.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// financeStore implements the adapter.FinanceStore interface.
type financeStore struct {
	db     *gorm.DB
	txOpts *sql.TxOptions
}

// NewFinanceStore creates a new finance store. A nil txOpts uses the driver's
// default isolation level.
func NewFinanceStore(db *gorm.DB, txOpts *sql.TxOptions) adapter.FinanceStore {
	return &financeStore{
		db:     db,
		txOpts: txOpts,
	}
}

// WithinTx runs fn in a transaction, retrying once when it lost a race.
func (s *financeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx adapter.FinanceTx) error) error {
	err := s.run(ctx, fn)
	if err == nil || !isConflict(err) {
		return err
	}

	slog.Warn("Financial transaction conflicted, retrying once", "error", err)

	err = s.run(ctx, fn)
	if err != nil && isConflict(err) {
		return domainerror.NewFinanceError(
			domainerror.ErrCodeReportConflict,
			"report is being updated concurrently, try again",
			fmt.Errorf("%w: %v", domainerror.ErrReportConflict, err),
		)
	}
	return err
}

func (s *financeStore) run(ctx context.Context, fn func(ctx context.Context, tx adapter.FinanceTx) error) error {
	var opts []*sql.TxOptions
	if s.txOpts != nil {
		opts = append(opts, s.txOpts)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &financeTx{db: tx})
	}, opts...)
}

// isConflict reports whether err was caused by a concurrent writer.
func isConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation, sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return true
		}
		return false
	}

	// SQLite reports lock contention as SQLITE_BUSY.
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// financeTx implements the adapter.FinanceTx interface on an open transaction.
// Every query must go through db so it joins the transaction.
type financeTx struct {
	db *gorm.DB
}

// UpsertReport finds or creates the report for a date in a single statement.
func (t *financeTx) UpsertReport(ctx context.Context, date time.Time) (*entity.Report, error) {
	date = entity.NormalizeDate(date)
	now := time.Now().UTC()

	reportModel := &model.ReportModel{
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": now}),
		}).
		Create(reportModel)
	if result.Error != nil {
		return nil, result.Error
	}

	// The conflict path does not reliably return the existing ID on every driver.
	var stored model.ReportModel
	if err := t.db.WithContext(ctx).Where("date = ?", date).First(&stored).Error; err != nil {
		return nil, err
	}

	return stored.ToEntity(), nil
}

// CreateProfit inserts a profit.
func (t *financeTx) CreateProfit(ctx context.Context, profit *entity.Profit) error {
	now := time.Now().UTC()
	profit.CreatedAt, profit.UpdatedAt = now, now

	profitModel := model.ProfitModelFromEntity(profit)
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(profitModel).Error; err != nil {
		return err
	}
	profit.ID = profitModel.ID
	return nil
}

// CreateConsumption inserts a consumption.
func (t *financeTx) CreateConsumption(ctx context.Context, consumption *entity.Consumption) error {
	now := time.Now().UTC()
	consumption.CreatedAt, consumption.UpdatedAt = now, now

	consumptionModel := model.ConsumptionModelFromEntity(consumption)
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(consumptionModel).Error; err != nil {
		return err
	}
	consumption.ID = consumptionModel.ID
	return nil
}

// CreateSalary inserts a salary.
func (t *financeTx) CreateSalary(ctx context.Context, salary *entity.Salary) error {
	now := time.Now().UTC()
	salary.CreatedAt, salary.UpdatedAt = now, now

	salaryModel := model.SalaryModelFromEntity(salary)
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(salaryModel).Error; err != nil {
		return err
	}
	salary.ID = salaryModel.ID
	return nil
}

// LockAppointment loads an appointment with SELECT ... FOR UPDATE.
func (t *financeTx) LockAppointment(ctx context.Context, id uint) (*entity.Appointment, error) {
	var appointmentModel model.AppointmentModel
	result := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&appointmentModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrAppointmentNotFound
		}
		return nil, result.Error
	}
	return appointmentModel.ToEntity(), nil
}

// SumAppointmentProfits sums the appointment's profits, including any inserted in this transaction.
func (t *financeTx) SumAppointmentProfits(ctx context.Context, appointmentID uint) (decimal.Decimal, error) {
	return sumProfits(ctx, t.db, appointmentID)
}

// UpdateAppointmentStatus persists a new appointment status.
func (t *financeTx) UpdateAppointmentStatus(ctx context.Context, appointmentID uint, status entity.AppointmentStatus) error {
	return t.db.WithContext(ctx).
		Model(&model.AppointmentModel{}).
		Where("id = ?", appointmentID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// LockDoctor loads a doctor with SELECT ... FOR UPDATE.
func (t *financeTx) LockDoctor(ctx context.Context, id uint) (*entity.Doctor, error) {
	var doctorModel model.DoctorModel
	result := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&doctorModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrDoctorNotFound
		}
		return nil, result.Error
	}
	return doctorModel.ToEntity(), nil
}

// UpdateDoctorBalance persists a new doctor balance.
func (t *financeTx) UpdateDoctorBalance(ctx context.Context, doctorID uint, balance decimal.Decimal) error {
	return t.db.WithContext(ctx).
		Model(&model.DoctorModel{}).
		Where("id = ?", doctorID).
		Updates(map[string]interface{}{
			"balance":    balance,
			"updated_at": time.Now().UTC(),
		}).Error
}

// FindService retrieves a service, returning nil when it does not exist.
func (t *financeTx) FindService(ctx context.Context, id uint) (*entity.Service, error) {
	var serviceModel model.ServiceModel
	result := t.db.WithContext(ctx).Where("id = ?", id).First(&serviceModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return serviceModel.ToEntity(), nil
}

// AppendBalanceEntry stores an immutable balance fact at the end of the doctor's chain.
// Callers hold the doctor's row lock; a racing append still trips the
// (doctor_id, sequence) unique index and is retried as a conflict.
func (t *financeTx) AppendBalanceEntry(ctx context.Context, entry *entity.BalanceEntry) error {
	var last uint64
	err := t.db.WithContext(ctx).
		Model(&model.BalanceEntryModel{}).
		Where("doctor_id = ?", entry.DoctorID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error
	if err != nil {
		return fmt.Errorf("failed to read balance chain head: %w", err)
	}

	entry.Sequence = last + 1
	return t.db.WithContext(ctx).Create(model.BalanceEntryModelFromEntity(entry)).Error
}

// AppendOutboxEvent stores an event for publication after commit.
func (t *financeTx) AppendOutboxEvent(ctx context.Context, event *entity.OutboxEvent) error {
	return t.db.WithContext(ctx).Create(model.OutboxEventModelFromEntity(event)).Error
}

// sumProfits adds up profit amounts in Go to keep decimal precision on every driver.
func sumProfits(ctx context.Context, db *gorm.DB, appointmentID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := db.WithContext(ctx).
		Model(&model.ProfitModel{}).
		Where("appointment_id = ?", appointmentID).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}
