// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// NotificationQueueRepository defines the interface for notification queue persistence operations.
type NotificationQueueRepository interface {
	// Create adds a new notification job to the queue.
	Create(ctx context.Context, job *entity.NotificationJob) error

	// GetPendingJobs retrieves jobs ready to be processed, ordered by scheduled_at.
	GetPendingJobs(ctx context.Context, limit int) ([]*entity.NotificationJob, error)

	// Update saves changes to a notification job.
	Update(ctx context.Context, job *entity.NotificationJob) error

	// GetByID retrieves a specific job by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.NotificationJob, error)
}

// SendResult represents the result of handing a message to a provider.
type SendResult struct {
	ProviderID string
}

// SMSSender delivers text messages to phone numbers.
type SMSSender interface {
	Send(ctx context.Context, phone, text string) (*SendResult, error)
}

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To       string
	Name     string
	Subject  string
	HTML     string
	Text     string
	Template string // Tags the message for provider-side analytics
	JobID    string // Stable reference so retries of one job are threaded together
}

// EmailSender delivers e-mails via an external provider.
type EmailSender interface {
	Send(ctx context.Context, input SendEmailInput) (*SendResult, error)
}

// PaymentReceiptInput describes a payment to confirm to a patient.
type PaymentReceiptInput struct {
	PatientName   string
	PatientPhone  string
	AppointmentID uint
	Amount        decimal.Decimal
	TotalPaid     decimal.Decimal
	Price         decimal.Decimal
	Status        entity.AppointmentStatus
}

// OverpaymentInput describes an appointment whose payments exceed its price.
type OverpaymentInput struct {
	AppointmentID uint
	Price         decimal.Decimal
	TotalPaid     decimal.Decimal
}

// Notifier queues best-effort notifications. Queueing never participates in
// the financial transaction that triggered it.
type Notifier interface {
	// NotifyPaymentReceived queues a payment receipt SMS to the patient.
	NotifyPaymentReceived(ctx context.Context, input PaymentReceiptInput) error

	// NotifyOverpayment queues a manual review request to the clinic admin.
	NotifyOverpayment(ctx context.Context, input OverpaymentInput) error

	// NotifyBalanceDiscrepancies queues a reconciliation alert to the clinic admin.
	NotifyBalanceDiscrepancies(ctx context.Context, discrepancies []*entity.BalanceDiscrepancy) error
}
