package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// ServiceConfig holds the recipients and switches of the notification service.
type ServiceConfig struct {
	ClinicName             string
	AdminName              string
	AdminEmail             string
	PaymentReceiptsEnabled bool
}

// Service queues notifications for the worker to deliver.
type Service struct {
	queue  adapter.NotificationQueueRepository
	config ServiceConfig
}

// NewService creates a new notification service.
func NewService(queue adapter.NotificationQueueRepository, config ServiceConfig) *Service {
	return &Service{
		queue:  queue,
		config: config,
	}
}

// NotifyPaymentReceived queues a payment receipt SMS to the patient.
func (s *Service) NotifyPaymentReceived(ctx context.Context, input adapter.PaymentReceiptInput) error {
	if !s.config.PaymentReceiptsEnabled {
		return nil
	}
	if strings.TrimSpace(input.PatientPhone) == "" {
		slog.Debug("Patient has no phone, payment receipt skipped", "appointment_id", input.AppointmentID)
		return nil
	}

	job := entity.NewNotificationJob(
		entity.NotificationChannelSMS,
		entity.TemplatePaymentReceipt,
		input.PatientPhone,
		input.PatientName,
		"",
		map[string]interface{}{
			"clinic_name":    s.config.ClinicName,
			"patient_name":   input.PatientName,
			"appointment_id": fmt.Sprintf("%d", input.AppointmentID),
			"amount":         input.Amount.StringFixed(2),
			"total_paid":     input.TotalPaid.StringFixed(2),
			"price":          input.Price.StringFixed(2),
			"status":         string(input.Status),
		},
	)

	return s.enqueue(ctx, job, "failed to queue payment receipt")
}

// NotifyOverpayment queues a manual review e-mail to the clinic admin.
func (s *Service) NotifyOverpayment(ctx context.Context, input adapter.OverpaymentInput) error {
	if s.config.AdminEmail == "" {
		slog.Warn("Admin e-mail not configured, overpayment review not queued", "appointment_id", input.AppointmentID)
		return nil
	}

	job := entity.NewNotificationJob(
		entity.NotificationChannelEmail,
		entity.TemplateOverpaymentReview,
		s.config.AdminEmail,
		s.config.AdminName,
		fmt.Sprintf("Overpayment on appointment #%d - %s", input.AppointmentID, s.config.ClinicName),
		map[string]interface{}{
			"admin_name":     s.config.AdminName,
			"appointment_id": fmt.Sprintf("%d", input.AppointmentID),
			"price":          input.Price.StringFixed(2),
			"total_paid":     input.TotalPaid.StringFixed(2),
			"excess":         input.TotalPaid.Sub(input.Price).StringFixed(2),
		},
	)

	return s.enqueue(ctx, job, "failed to queue overpayment review")
}

// NotifyBalanceDiscrepancies queues a reconciliation alert e-mail to the clinic admin.
func (s *Service) NotifyBalanceDiscrepancies(ctx context.Context, discrepancies []*entity.BalanceDiscrepancy) error {
	if len(discrepancies) == 0 {
		return nil
	}
	if s.config.AdminEmail == "" {
		slog.Warn("Admin e-mail not configured, balance discrepancy alert not queued", "count", len(discrepancies))
		return nil
	}

	items := make([]interface{}, len(discrepancies))
	for i, d := range discrepancies {
		items[i] = map[string]interface{}{
			"doctor_id":        fmt.Sprintf("%d", d.DoctorID),
			"doctor_name":      d.DoctorName,
			"recorded_balance": d.RecordedBalance.StringFixed(2),
			"expected_balance": d.ExpectedBalance.StringFixed(2),
			"broken_chain":     d.BrokenChainAt != nil,
		}
	}

	job := entity.NewNotificationJob(
		entity.NotificationChannelEmail,
		entity.TemplateBalanceDiscrepancy,
		s.config.AdminEmail,
		s.config.AdminName,
		fmt.Sprintf("%d doctor balance discrepancies - %s", len(discrepancies), s.config.ClinicName),
		map[string]interface{}{
			"admin_name":    s.config.AdminName,
			"discrepancies": items,
		},
	)

	return s.enqueue(ctx, job, "failed to queue balance discrepancy alert")
}

func (s *Service) enqueue(ctx context.Context, job *entity.NotificationJob, message string) error {
	if err := s.queue.Create(ctx, job); err != nil {
		return domainerror.NewNotificationError(
			domainerror.ErrCodeNotificationQueueFailed,
			message,
			err,
		)
	}
	return nil
}

// Ensure Service implements adapter.Notifier.
var _ adapter.Notifier = (*Service)(nil)
