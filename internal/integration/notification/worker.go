package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/notification/templates"
)

// Worker processes the notification queue and hands messages to the providers.
type Worker struct {
	queue        adapter.NotificationQueueRepository
	sms          adapter.SMSSender
	email        adapter.EmailSender
	renderer     *templates.Renderer
	pollInterval time.Duration
	batchSize    int
}

// WorkerConfig holds configuration for the notification worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    10,
	}
}

// NewWorker creates a new notification worker.
func NewWorker(
	queue adapter.NotificationQueueRepository,
	sms adapter.SMSSender,
	email adapter.EmailSender,
	renderer *templates.Renderer,
	config WorkerConfig,
) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultWorkerConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultWorkerConfig().BatchSize
	}
	return &Worker{
		queue:        queue,
		sms:          sms,
		email:        email,
		renderer:     renderer,
		pollInterval: config.PollInterval,
		batchSize:    config.BatchSize,
	}
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Notification worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Notification worker shutting down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// ProcessNow processes all pending notifications immediately.
func (w *Worker) ProcessNow(ctx context.Context) {
	w.processBatch(ctx)
}

func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.queue.GetPendingJobs(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending notification jobs", "error", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	slog.Debug("Processing notification batch", "count", len(jobs))

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
			w.processJob(ctx, job)
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job *entity.NotificationJob) {
	logger := slog.With(
		"job_id", job.ID,
		"channel", job.Channel,
		"template", job.Template,
	)

	job.MarkProcessing()
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("Failed to mark job as processing", "error", err)
		return
	}

	result, err := w.deliver(ctx, job)
	if err != nil {
		logger.Error("Failed to deliver notification", "error", err)

		var notificationErr *domainerror.NotificationError
		permanent := errors.As(err, &notificationErr) && notificationErr.IsPermanent()

		w.handleFailure(ctx, job, err, permanent)
		return
	}

	job.MarkSent(result.ProviderID)
	if err := w.queue.Update(ctx, job); err != nil {
		logger.Error("Failed to mark job as sent", "error", err)
		return
	}

	logger.Info("Notification sent", "provider_id", result.ProviderID)
}

func (w *Worker) deliver(ctx context.Context, job *entity.NotificationJob) (*adapter.SendResult, error) {
	data, err := templateData(job)
	if err != nil {
		return nil, err
	}

	switch job.Channel {
	case entity.NotificationChannelSMS:
		text, err := w.renderer.RenderSMS(string(job.Template), data)
		if err != nil {
			return nil, domainerror.NewNotificationError(domainerror.ErrCodeTemplateRenderFailed, "failed to render sms", err)
		}
		return w.sms.Send(ctx, job.Recipient, text)

	case entity.NotificationChannelEmail:
		html, text, err := w.renderer.RenderEmail(string(job.Template), data)
		if err != nil {
			return nil, domainerror.NewNotificationError(domainerror.ErrCodeTemplateRenderFailed, "failed to render email", err)
		}
		return w.email.Send(ctx, adapter.SendEmailInput{
			To:       job.Recipient,
			Name:     job.RecipientName,
			Subject:  job.Subject,
			HTML:     html,
			Text:     text,
			Template: string(job.Template),
			JobID:    job.ID.String(),
		})

	default:
		return nil, domainerror.NewNotificationError(
			domainerror.ErrCodeUnsupportedChannel,
			"unsupported channel "+string(job.Channel),
			domainerror.ErrUnsupportedChannel,
		)
	}
}

// templateData converts the stored job data into the template's view model.
func templateData(job *entity.NotificationJob) (interface{}, error) {
	switch job.Template {
	case entity.TemplatePaymentReceipt:
		return templates.PaymentReceiptData{
			ClinicName:    getString(job.TemplateData, "clinic_name"),
			PatientName:   getString(job.TemplateData, "patient_name"),
			AppointmentID: getString(job.TemplateData, "appointment_id"),
			Amount:        getString(job.TemplateData, "amount"),
			TotalPaid:     getString(job.TemplateData, "total_paid"),
			Price:         getString(job.TemplateData, "price"),
			FullyPaid:     getString(job.TemplateData, "status") == string(entity.AppointmentStatusFullyPaid),
		}, nil

	case entity.TemplateOverpaymentReview:
		return templates.OverpaymentReviewData{
			AdminName:     getString(job.TemplateData, "admin_name"),
			AppointmentID: getString(job.TemplateData, "appointment_id"),
			Price:         getString(job.TemplateData, "price"),
			TotalPaid:     getString(job.TemplateData, "total_paid"),
			Excess:        getString(job.TemplateData, "excess"),
		}, nil

	case entity.TemplateBalanceDiscrepancy:
		data := templates.BalanceDiscrepancyData{
			AdminName: getString(job.TemplateData, "admin_name"),
		}
		items, _ := job.TemplateData["discrepancies"].([]interface{})
		for _, raw := range items {
			item, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			broken, _ := item["broken_chain"].(bool)
			data.Items = append(data.Items, templates.DiscrepancyLine{
				DoctorID:        getString(item, "doctor_id"),
				DoctorName:      getString(item, "doctor_name"),
				RecordedBalance: getString(item, "recorded_balance"),
				ExpectedBalance: getString(item, "expected_balance"),
				BrokenChain:     broken,
			})
		}
		return data, nil

	default:
		return nil, domainerror.NewNotificationError(
			domainerror.ErrCodeInvalidTemplate,
			"unknown template "+string(job.Template),
			domainerror.ErrInvalidTemplate,
		)
	}
}

func (w *Worker) handleFailure(ctx context.Context, job *entity.NotificationJob, err error, permanent bool) {
	job.MarkFailed(err, permanent)

	if updateErr := w.queue.Update(ctx, job); updateErr != nil {
		slog.Error("Failed to update job after failure",
			"job_id", job.ID,
			"error", updateErr,
		)
	}

	if job.Status == entity.NotificationStatusFailed {
		slog.Warn("Notification job permanently failed",
			"job_id", job.ID,
			"attempts", job.Attempts,
			"last_error", job.LastError,
		)
	} else {
		slog.Info("Notification job scheduled for retry",
			"job_id", job.ID,
			"attempts", job.Attempts,
			"scheduled_at", job.ScheduledAt,
		)
	}
}

// getString safely extracts a string from a map.
func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
