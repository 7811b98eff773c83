// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationChannel represents the delivery channel of a notification.
type NotificationChannel string

const (
	NotificationChannelSMS   NotificationChannel = "sms"
	NotificationChannelEmail NotificationChannel = "email"
)

// NotificationStatus represents the status of a notification job in the queue.
type NotificationStatus string

const (
	NotificationStatusPending    NotificationStatus = "pending"
	NotificationStatusProcessing NotificationStatus = "processing"
	NotificationStatusSent       NotificationStatus = "sent"
	NotificationStatusFailed     NotificationStatus = "failed"
)

// NotificationTemplate represents the message template of a notification.
type NotificationTemplate string

const (
	TemplatePaymentReceipt     NotificationTemplate = "payment_receipt"
	TemplateOverpaymentReview  NotificationTemplate = "overpayment_review"
	TemplateBalanceDiscrepancy NotificationTemplate = "balance_discrepancy"
)

// NotificationJob represents a notification in the queue waiting to be sent.
type NotificationJob struct {
	ID            uuid.UUID
	Channel       NotificationChannel
	Template      NotificationTemplate
	Recipient     string // Phone number or e-mail address
	RecipientName string
	Subject       string
	TemplateData  map[string]interface{}
	Status        NotificationStatus
	Attempts      int
	MaxAttempts   int
	LastError     string
	ProviderID    string
	CreatedAt     time.Time
	ScheduledAt   time.Time
	ProcessedAt   *time.Time
}

// NewNotificationJob creates a new NotificationJob with default values.
func NewNotificationJob(channel NotificationChannel, template NotificationTemplate, recipient, recipientName, subject string, data map[string]interface{}) *NotificationJob {
	now := time.Now().UTC()
	return &NotificationJob{
		ID:            uuid.New(),
		Channel:       channel,
		Template:      template,
		Recipient:     recipient,
		RecipientName: recipientName,
		Subject:       subject,
		TemplateData:  data,
		Status:        NotificationStatusPending,
		Attempts:      0,
		MaxAttempts:   3,
		CreatedAt:     now,
		ScheduledAt:   now,
	}
}

// MarkProcessing marks the job as currently being processed.
func (j *NotificationJob) MarkProcessing() {
	j.Status = NotificationStatusProcessing
}

// MarkSent marks the job as successfully delivered to the provider.
func (j *NotificationJob) MarkSent(providerID string) {
	j.Status = NotificationStatusSent
	j.ProviderID = providerID
	now := time.Now().UTC()
	j.ProcessedAt = &now
}

// MarkFailed marks the job as failed and schedules a retry if attempts remain.
func (j *NotificationJob) MarkFailed(err error, permanent bool) {
	j.Attempts++
	j.LastError = err.Error()

	if permanent || j.Attempts >= j.MaxAttempts {
		j.Status = NotificationStatusFailed
		now := time.Now().UTC()
		j.ProcessedAt = &now
	} else {
		j.Status = NotificationStatusPending
		j.ScheduledAt = j.calculateNextRetry()
	}
}

// calculateNextRetry calculates the next retry time.
// Retry delays: 0s (immediate), 1min, 5min
func (j *NotificationJob) calculateNextRetry() time.Time {
	delays := []time.Duration{0, 1 * time.Minute, 5 * time.Minute}
	if j.Attempts < len(delays) {
		return time.Now().UTC().Add(delays[j.Attempts])
	}
	return time.Now().UTC().Add(5 * time.Minute)
}

// CanRetry returns true if the job can be retried.
func (j *NotificationJob) CanRetry() bool {
	return j.Attempts < j.MaxAttempts
}
