// Package finance contains the financial reporting and balance use cases.
package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// MaxConsumptionTitleLength is the maximum allowed length for consumption titles, in characters.
const MaxConsumptionTitleLength = 255

// maxAmount is the first value that no longer fits a decimal(11,2) column.
var maxAmount = decimal.New(1, 9)

var tracer = otel.Tracer("github.com/dental-clinic/backend/internal/application/usecase/finance")

// RecordEventInput represents the input for recording a financial event.
type RecordEventInput struct {
	Date  time.Time
	Event entity.FinancialEvent
}

// RecordEventOutput represents the output of recording a financial event.
type RecordEventOutput struct {
	Report       *entity.ReportView
	StatusChange *StatusChange       // Set for profits
	BalanceEntry *entity.BalanceEntry // Nil when no balance changed
}

// RecordEventUseCase records profits, consumptions and salaries on the daily report.
// The report upsert, the event row, the status and balance side effects and the
// outbox event are written in one transaction.
type RecordEventUseCase struct {
	store           adapter.FinanceStore
	reportRepo      adapter.ReportRepository
	appointmentRepo adapter.AppointmentRepository
	cache           adapter.ReportCache
	notifier        adapter.Notifier
	tracker         *StatusTracker
	ledger          *BalanceLedger
	aggregator      *Aggregator
}

// NewRecordEventUseCase creates a new RecordEventUseCase instance.
func NewRecordEventUseCase(
	store adapter.FinanceStore,
	reportRepo adapter.ReportRepository,
	appointmentRepo adapter.AppointmentRepository,
	cache adapter.ReportCache,
	notifier adapter.Notifier,
) *RecordEventUseCase {
	return &RecordEventUseCase{
		store:           store,
		reportRepo:      reportRepo,
		appointmentRepo: appointmentRepo,
		cache:           cache,
		notifier:        notifier,
		tracker:         NewStatusTracker(),
		ledger:          NewBalanceLedger(),
		aggregator:      NewAggregator(),
	}
}

// RecordProfit records a payment against an appointment.
func (uc *RecordEventUseCase) RecordProfit(ctx context.Context, date time.Time, appointmentID uint, amount decimal.Decimal) (*RecordEventOutput, error) {
	return uc.Execute(ctx, RecordEventInput{Date: date, Event: entity.NewProfitEvent(appointmentID, amount)})
}

// RecordConsumption records an operating expense.
func (uc *RecordEventUseCase) RecordConsumption(ctx context.Context, date time.Time, title string, description *string, amount decimal.Decimal) (*RecordEventOutput, error) {
	return uc.Execute(ctx, RecordEventInput{Date: date, Event: entity.NewConsumptionEvent(title, description, amount)})
}

// RecordSalary records a salary payout to a doctor.
func (uc *RecordEventUseCase) RecordSalary(ctx context.Context, date time.Time, doctorID uint, amount decimal.Decimal, title, description *string) (*RecordEventOutput, error) {
	return uc.Execute(ctx, RecordEventInput{Date: date, Event: entity.NewSalaryEvent(doctorID, amount, title, description)})
}

// Execute records a financial event and returns the freshly aggregated report of its date.
func (uc *RecordEventUseCase) Execute(ctx context.Context, input RecordEventInput) (*RecordEventOutput, error) {
	ctx, span := tracer.Start(ctx, "finance.RecordEvent")
	defer span.End()
	span.SetAttributes(attribute.String("finance.event_kind", string(input.Event.Kind)))

	if err := validateRecordEventInput(input); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	date := entity.NormalizeDate(input.Date)
	span.SetAttributes(attribute.String("finance.report_date", date.Format(entity.ReportDateLayout)))

	var result recordResult
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx adapter.FinanceTx) error {
		result = recordResult{}

		report, err := tx.UpsertReport(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to upsert report: %w", err)
		}

		switch input.Event.Kind {
		case entity.FinancialEventProfit:
			return uc.recordProfit(ctx, tx, report, input.Event.Profit, &result)
		case entity.FinancialEventConsumption:
			return uc.recordConsumption(ctx, tx, report, input.Event.Consumption)
		case entity.FinancialEventSalary:
			return uc.recordSalary(ctx, tx, report, input.Event.Salary, &result)
		default:
			return invalidEventError(input.Event.Kind)
		}
	})
	if err != nil {
		err = toFinanceError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	slog.Info("Financial event recorded",
		"kind", input.Event.Kind,
		"date", date.Format(entity.ReportDateLayout),
	)

	uc.invalidateCache(ctx, date)

	view, err := uc.freshView(ctx, date)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.notify(ctx, input.Event, &result)

	return &RecordEventOutput{
		Report:       view,
		StatusChange: result.statusChange,
		BalanceEntry: result.balanceEntry,
	}, nil
}

type recordResult struct {
	statusChange *StatusChange
	balanceEntry *entity.BalanceEntry
	profit       *entity.Profit
}

type profitRecordedPayload struct {
	ProfitID      uint   `json:"profit_id"`
	ReportDate    string `json:"report_date"`
	AppointmentID uint   `json:"appointment_id"`
	Amount        string `json:"amount"`
	Status        string `json:"appointment_status"`
	DoctorShare   string `json:"doctor_share,omitempty"`
}

type consumptionRecordedPayload struct {
	ConsumptionID uint   `json:"consumption_id"`
	ReportDate    string `json:"report_date"`
	Title         string `json:"title"`
	Amount        string `json:"amount"`
}

type salaryRecordedPayload struct {
	SalaryID      uint   `json:"salary_id"`
	ConsumptionID uint   `json:"consumption_id"`
	ReportDate    string `json:"report_date"`
	DoctorID      uint   `json:"doctor_id"`
	Amount        string `json:"amount"`
	Balance       string `json:"balance"`
}

func (uc *RecordEventUseCase) recordProfit(
	ctx context.Context,
	tx adapter.FinanceTx,
	report *entity.Report,
	event *entity.ProfitEvent,
	result *recordResult,
) error {
	appointment, err := tx.LockAppointment(ctx, event.AppointmentID)
	if err != nil {
		return err
	}

	profit := &entity.Profit{
		ReportID:      report.ID,
		AppointmentID: appointment.ID,
		Amount:        event.Amount,
	}
	if err := tx.CreateProfit(ctx, profit); err != nil {
		return fmt.Errorf("failed to create profit: %w", err)
	}
	result.profit = profit

	change, err := uc.tracker.Recompute(ctx, tx, appointment)
	if err != nil {
		return err
	}
	result.statusChange = change

	entry, err := uc.ledger.ApplyProfitShare(ctx, tx, profit, appointment)
	if err != nil {
		return err
	}
	result.balanceEntry = entry

	payload := profitRecordedPayload{
		ProfitID:      profit.ID,
		ReportDate:    report.Date.Format(entity.ReportDateLayout),
		AppointmentID: appointment.ID,
		Amount:        profit.Amount.StringFixed(2),
		Status:        string(change.Current),
	}
	if entry != nil {
		payload.DoctorShare = entry.Delta.StringFixed(2)
	}

	return appendOutbox(ctx, tx, entity.EventTypeProfitRecorded, report, payload)
}

func (uc *RecordEventUseCase) recordConsumption(
	ctx context.Context,
	tx adapter.FinanceTx,
	report *entity.Report,
	event *entity.ConsumptionEvent,
) error {
	consumption := &entity.Consumption{
		ReportID:    report.ID,
		Title:       strings.TrimSpace(event.Title),
		Description: event.Description,
		Amount:      event.Amount,
	}
	if err := tx.CreateConsumption(ctx, consumption); err != nil {
		return fmt.Errorf("failed to create consumption: %w", err)
	}

	return appendOutbox(ctx, tx, entity.EventTypeConsumptionRecorded, report, consumptionRecordedPayload{
		ConsumptionID: consumption.ID,
		ReportDate:    report.Date.Format(entity.ReportDateLayout),
		Title:         consumption.Title,
		Amount:        consumption.Amount.StringFixed(2),
	})
}

// recordSalary books the payout as a salary plus exactly one linked consumption,
// so it is counted once in the report's total consumption.
func (uc *RecordEventUseCase) recordSalary(
	ctx context.Context,
	tx adapter.FinanceTx,
	report *entity.Report,
	event *entity.SalaryEvent,
	result *recordResult,
) error {
	doctor, err := tx.LockDoctor(ctx, event.DoctorID)
	if err != nil {
		return err
	}

	salary := &entity.Salary{
		DoctorID: doctor.ID,
		Amount:   event.Amount,
	}
	if err := tx.CreateSalary(ctx, salary); err != nil {
		return fmt.Errorf("failed to create salary: %w", err)
	}

	title := fmt.Sprintf("Salary: %s", doctor.FullName())
	if event.Title != nil && strings.TrimSpace(*event.Title) != "" {
		title = strings.TrimSpace(*event.Title)
	}
	title = truncateTitle(title)

	consumption := &entity.Consumption{
		ReportID:    report.ID,
		Title:       title,
		Description: event.Description,
		Amount:      salary.Amount,
		SalaryID:    &salary.ID,
	}
	if err := tx.CreateConsumption(ctx, consumption); err != nil {
		return fmt.Errorf("failed to create salary consumption: %w", err)
	}

	entry, err := uc.ledger.ApplySalaryDebit(ctx, tx, salary)
	if err != nil {
		return err
	}
	result.balanceEntry = entry

	return appendOutbox(ctx, tx, entity.EventTypeSalaryRecorded, report, salaryRecordedPayload{
		SalaryID:      salary.ID,
		ConsumptionID: consumption.ID,
		ReportDate:    report.Date.Format(entity.ReportDateLayout),
		DoctorID:      doctor.ID,
		Amount:        salary.Amount.StringFixed(2),
		Balance:       entry.BalanceAfter.StringFixed(2),
	})
}

func appendOutbox(ctx context.Context, tx adapter.FinanceTx, eventType string, report *entity.Report, payload any) error {
	event, err := entity.NewOutboxEvent(eventType, report.Date.Format(entity.ReportDateLayout), payload)
	if err != nil {
		return fmt.Errorf("failed to encode outbox event: %w", err)
	}

	// Stored so consumers join this trace rather than the publisher poll.
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if len(carrier) > 0 {
		event.TraceContext = carrier
	}

	if err := tx.AppendOutboxEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to append outbox event: %w", err)
	}
	return nil
}

func (uc *RecordEventUseCase) invalidateCache(ctx context.Context, date time.Time) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, date); err != nil {
		slog.Warn("Failed to invalidate cached report",
			"date", date.Format(entity.ReportDateLayout),
			"error", err,
		)
	}
}

func (uc *RecordEventUseCase) freshView(ctx context.Context, date time.Time) (*entity.ReportView, error) {
	report, err := uc.reportRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, toFinanceError(err)
	}
	view := uc.aggregator.Aggregate(report)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, view); err != nil {
			slog.Warn("Failed to cache report", "date", date.Format(entity.ReportDateLayout), "error", err)
		}
	}
	return view, nil
}

// notify queues follow-up notifications. Failures are logged and never
// affect the already committed financial event.
func (uc *RecordEventUseCase) notify(ctx context.Context, event entity.FinancialEvent, result *recordResult) {
	if uc.notifier == nil || event.Kind != entity.FinancialEventProfit || result.statusChange == nil {
		return
	}
	change := result.statusChange

	if change.Overpaid {
		if err := uc.notifier.NotifyOverpayment(ctx, adapter.OverpaymentInput{
			AppointmentID: change.AppointmentID,
			Price:         change.Price,
			TotalPaid:     change.TotalPaid,
		}); err != nil {
			slog.Error("Failed to queue overpayment review", "appointment_id", change.AppointmentID, "error", err)
		}
	}

	if uc.appointmentRepo == nil || result.profit == nil {
		return
	}
	appointment, err := uc.appointmentRepo.FindByID(ctx, change.AppointmentID)
	if err != nil || appointment.Patient == nil {
		slog.Warn("Skipping payment receipt, patient not available", "appointment_id", change.AppointmentID, "error", err)
		return
	}

	patient := appointment.Patient
	name := strings.TrimSpace(patient.FirstName + " " + patient.LastName)
	if err := uc.notifier.NotifyPaymentReceived(ctx, adapter.PaymentReceiptInput{
		PatientName:   name,
		PatientPhone:  patient.Phone,
		AppointmentID: change.AppointmentID,
		Amount:        result.profit.Amount,
		TotalPaid:     change.TotalPaid,
		Price:         change.Price,
		Status:        change.Current,
	}); err != nil {
		slog.Error("Failed to queue payment receipt", "appointment_id", change.AppointmentID, "error", err)
	}
}

func validateRecordEventInput(input RecordEventInput) error {
	if input.Date.IsZero() {
		return domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidReportDate,
			"date",
			"date is required",
			domainerror.ErrInvalidReportDate,
		)
	}

	event := input.Event
	switch event.Kind {
	case entity.FinancialEventProfit:
		if event.Profit == nil {
			return invalidEventError(event.Kind)
		}
		if event.Profit.AppointmentID == 0 {
			return missingFieldError("appointment_id")
		}
		return validateAmount(event.Profit.Amount, false)

	case entity.FinancialEventConsumption:
		if event.Consumption == nil {
			return invalidEventError(event.Kind)
		}
		title := strings.TrimSpace(event.Consumption.Title)
		if title == "" {
			return domainerror.NewFinanceValidationError(
				domainerror.ErrCodeInvalidConsumptionTitle,
				"title",
				"title is required",
				domainerror.ErrInvalidConsumptionTitle,
			)
		}
		if err := validateTitleLength(title); err != nil {
			return err
		}
		return validateAmount(event.Consumption.Amount, true)

	case entity.FinancialEventSalary:
		if event.Salary == nil {
			return invalidEventError(event.Kind)
		}
		if event.Salary.DoctorID == 0 {
			return missingFieldError("doctor_id")
		}
		if event.Salary.Title != nil {
			if err := validateTitleLength(strings.TrimSpace(*event.Salary.Title)); err != nil {
				return err
			}
		}
		return validateAmount(event.Salary.Amount, false)

	default:
		return invalidEventError(event.Kind)
	}
}

func validateTitleLength(title string) error {
	if utf8.RuneCountInString(title) > MaxConsumptionTitleLength {
		return domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidConsumptionTitle,
			"title",
			fmt.Sprintf("title must not exceed %d characters", MaxConsumptionTitleLength),
			domainerror.ErrInvalidConsumptionTitle,
		)
	}
	return nil
}

// truncateTitle shortens a generated title to the column width without splitting a character.
func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxConsumptionTitleLength {
		return title
	}
	return string([]rune(title)[:MaxConsumptionTitleLength])
}

// validateAmount rejects zero amounts. Negative amounts are compensating
// entries and only allowed when positiveOnly is false.
func validateAmount(amount decimal.Decimal, positiveOnly bool) error {
	if amount.IsZero() {
		return domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidAmount,
			"amount",
			"amount is required and must not be zero",
			domainerror.ErrInvalidAmount,
		)
	}
	if positiveOnly && amount.IsNegative() {
		return domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidAmount,
			"amount",
			"amount must be greater than zero",
			domainerror.ErrInvalidAmount,
		)
	}
	if amount.Exponent() < -2 {
		return domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidAmount,
			"amount",
			"amount must have at most 2 decimal places",
			domainerror.ErrInvalidAmount,
		)
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidAmount,
			"amount",
			"amount must have at most 9 integer digits",
			domainerror.ErrInvalidAmount,
		)
	}
	return nil
}

func invalidEventError(kind entity.FinancialEventKind) error {
	return domainerror.NewFinanceValidationError(
		domainerror.ErrCodeInvalidEventKind,
		"kind",
		fmt.Sprintf("unsupported financial event %q", kind),
		domainerror.ErrInvalidEventKind,
	)
}

func missingFieldError(field string) error {
	return domainerror.NewFinanceValidationError(
		domainerror.ErrCodeMissingFinanceFields,
		field,
		field+" is required",
		nil,
	)
}

// toFinanceError maps repository sentinels onto coded finance errors.
func toFinanceError(err error) error {
	var financeErr *domainerror.FinanceError
	if errors.As(err, &financeErr) {
		return financeErr
	}

	switch {
	case errors.Is(err, domainerror.ErrAppointmentNotFound):
		return domainerror.NewFinanceError(domainerror.ErrCodeAppointmentNotFound, "appointment not found", err)
	case errors.Is(err, domainerror.ErrDoctorNotFound):
		return domainerror.NewFinanceError(domainerror.ErrCodeDoctorNotFound, "doctor not found", err)
	case errors.Is(err, domainerror.ErrReportNotFound):
		return domainerror.NewFinanceError(domainerror.ErrCodeReportNotFound, "report not found", err)
	case errors.Is(err, domainerror.ErrReportConflict):
		return domainerror.NewFinanceError(domainerror.ErrCodeReportConflict, "report is being updated concurrently, try again", err)
	default:
		return domainerror.NewFinanceInternalError("unexpected finance failure", err)
	}
}
