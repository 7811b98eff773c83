package finance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/persistence"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

// recordingNotifier captures queued notifications.
type recordingNotifier struct {
	mu            sync.Mutex
	receipts      []adapter.PaymentReceiptInput
	overpayments  []adapter.OverpaymentInput
	discrepancies [][]*entity.BalanceDiscrepancy
}

func (n *recordingNotifier) NotifyPaymentReceived(_ context.Context, input adapter.PaymentReceiptInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, input)
	return nil
}

func (n *recordingNotifier) NotifyOverpayment(_ context.Context, input adapter.OverpaymentInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overpayments = append(n.overpayments, input)
	return nil
}

func (n *recordingNotifier) NotifyBalanceDiscrepancies(_ context.Context, discrepancies []*entity.BalanceDiscrepancy) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.discrepancies = append(n.discrepancies, discrepancies)
	return nil
}

type financeFixture struct {
	db           *gorm.DB
	notifier     *recordingNotifier
	appointments adapter.AppointmentRepository
	record       *RecordEventUseCase
	getReport    *GetReportUseCase
	getRange     *GetReportsInRangeUseCase
	recompute    *RecomputeAppointmentStatusUseCase
	ledger       *GetDoctorLedgerUseCase
	reconcile    *ReconcileBalancesUseCase
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newFinanceFixture(t *testing.T) *financeFixture {
	t.Helper()

	db := newTestDB(t)
	notifier := &recordingNotifier{}

	store := persistence.NewFinanceStore(db, nil)
	reportRepo := persistence.NewReportRepository(db)
	appointmentRepo := persistence.NewAppointmentRepository(db)
	doctorRepo := persistence.NewDoctorRepository(db)

	return &financeFixture{
		db:           db,
		notifier:     notifier,
		appointments: appointmentRepo,
		record:       NewRecordEventUseCase(store, reportRepo, appointmentRepo, nil, notifier),
		getReport:    NewGetReportUseCase(reportRepo, nil),
		getRange:     NewGetReportsInRangeUseCase(reportRepo),
		recompute:    NewRecomputeAppointmentStatusUseCase(store, notifier),
		ledger:       NewGetDoctorLedgerUseCase(doctorRepo),
		reconcile:    NewReconcileBalancesUseCase(doctorRepo, notifier),
	}
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func day(value string) time.Time {
	t, err := time.Parse(entity.ReportDateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *financeFixture) seedDoctor(t *testing.T, balance string) *entity.Doctor {
	t.Helper()
	now := time.Now().UTC()
	m := &model.DoctorModel{FirstName: "Ana", LastName: "Lima", Phone: "+5511900000001", Balance: dec(balance), CreatedAt: now, UpdatedAt: now}
	if err := f.db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed doctor: %v", err)
	}
	return m.ToEntity()
}

func (f *financeFixture) seedPatient(t *testing.T) *entity.Patient {
	t.Helper()
	now := time.Now().UTC()
	m := &model.PatientModel{FirstName: "Joao", LastName: "Souza", Phone: "+5511900000002", CreatedAt: now, UpdatedAt: now}
	if err := f.db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed patient: %v", err)
	}
	return m.ToEntity()
}

func (f *financeFixture) seedService(t *testing.T, price, kpi string) *entity.Service {
	t.Helper()
	now := time.Now().UTC()
	m := &model.ServiceModel{Name: "Cleaning", Price: dec(price), KPIPercent: dec(kpi), CreatedAt: now, UpdatedAt: now}
	if err := f.db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed service: %v", err)
	}
	return m.ToEntity()
}

// seedAppointment schedules an appointment. Doctor and service may be nil.
func (f *financeFixture) seedAppointment(t *testing.T, doctor *entity.Doctor, service *entity.Service, price string) *entity.Appointment {
	t.Helper()
	patient := f.seedPatient(t)

	appointment := &entity.Appointment{
		PatientID: patient.ID,
		Price:     dec(price),
		StartTime: time.Now().UTC(),
	}
	if doctor != nil {
		appointment.DoctorID = &doctor.ID
	}
	if service != nil {
		appointment.ServiceID = &service.ID
	}
	if err := f.appointments.Save(context.Background(), appointment); err != nil {
		t.Fatalf("failed to seed appointment: %v", err)
	}
	return appointment
}

func (f *financeFixture) appointmentStatus(t *testing.T, id uint) entity.AppointmentStatus {
	t.Helper()
	var m model.AppointmentModel
	if err := f.db.First(&m, id).Error; err != nil {
		t.Fatalf("failed to load appointment: %v", err)
	}
	return entity.AppointmentStatus(m.Status)
}

func (f *financeFixture) doctorBalance(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	var m model.DoctorModel
	if err := f.db.First(&m, id).Error; err != nil {
		t.Fatalf("failed to load doctor: %v", err)
	}
	return m.Balance
}

func (f *financeFixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("failed to count %T: %v", m, err)
	}
	return n
}

func expectFinanceCode(t *testing.T, err error, code domainerror.FinanceErrorCode) *domainerror.FinanceError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	var financeErr *domainerror.FinanceError
	if !errors.As(err, &financeErr) {
		t.Fatalf("expected FinanceError, got %T: %v", err, err)
	}
	if financeErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, financeErr.Code, err)
	}
	return financeErr
}
