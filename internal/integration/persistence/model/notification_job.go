package model

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// NotificationJobModel represents the notification_jobs table in the database.
type NotificationJobModel struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Channel       string       `gorm:"type:varchar(10);not null"`
	Template      string       `gorm:"type:varchar(50);not null"`
	Recipient     string       `gorm:"type:varchar(255);not null"`
	RecipientName string       `gorm:"type:varchar(255)"`
	Subject       string       `gorm:"type:varchar(500)"`
	TemplateData  string       `gorm:"type:jsonb;not null;default:'{}'"`
	Status        string       `gorm:"type:varchar(20);not null;default:'pending';index:idx_notification_jobs_pending,priority:1"`
	Attempts      int          `gorm:"not null;default:0"`
	MaxAttempts   int          `gorm:"not null;default:3"`
	LastError     string       `gorm:"type:text"`
	ProviderID    string       `gorm:"type:varchar(100)"`
	CreatedAt     time.Time    `gorm:"not null"`
	ScheduledAt   time.Time    `gorm:"not null;index:idx_notification_jobs_pending,priority:2"`
	ProcessedAt   sql.NullTime `gorm:"type:timestamptz"`
}

// TableName returns the table name for the NotificationJobModel.
func (NotificationJobModel) TableName() string {
	return "notification_jobs"
}

// ToEntity converts a NotificationJobModel to a domain NotificationJob entity.
func (m *NotificationJobModel) ToEntity() *entity.NotificationJob {
	var templateData map[string]interface{}
	if m.TemplateData != "" {
		if err := json.Unmarshal([]byte(m.TemplateData), &templateData); err != nil {
			slog.Warn("Failed to unmarshal notification template data", "error", err, "id", m.ID)
		}
	}
	if templateData == nil {
		templateData = make(map[string]interface{})
	}

	var processedAt *time.Time
	if m.ProcessedAt.Valid {
		processedAt = &m.ProcessedAt.Time
	}

	return &entity.NotificationJob{
		ID:            m.ID,
		Channel:       entity.NotificationChannel(m.Channel),
		Template:      entity.NotificationTemplate(m.Template),
		Recipient:     m.Recipient,
		RecipientName: m.RecipientName,
		Subject:       m.Subject,
		TemplateData:  templateData,
		Status:        entity.NotificationStatus(m.Status),
		Attempts:      m.Attempts,
		MaxAttempts:   m.MaxAttempts,
		LastError:     m.LastError,
		ProviderID:    m.ProviderID,
		CreatedAt:     m.CreatedAt,
		ScheduledAt:   m.ScheduledAt,
		ProcessedAt:   processedAt,
	}
}

// NotificationJobModelFromEntity creates a NotificationJobModel from a domain NotificationJob entity.
func NotificationJobModelFromEntity(job *entity.NotificationJob) *NotificationJobModel {
	// Fallback to empty object on error
	templateDataJSON, err := json.Marshal(job.TemplateData)
	if err != nil {
		slog.Error("Failed to marshal notification template data", "error", err, "job_id", job.ID)
		templateDataJSON = []byte("{}")
	}

	var processedAt sql.NullTime
	if job.ProcessedAt != nil {
		processedAt = sql.NullTime{Time: *job.ProcessedAt, Valid: true}
	}

	return &NotificationJobModel{
		ID:            job.ID,
		Channel:       string(job.Channel),
		Template:      string(job.Template),
		Recipient:     job.Recipient,
		RecipientName: job.RecipientName,
		Subject:       job.Subject,
		TemplateData:  string(templateDataJSON),
		Status:        string(job.Status),
		Attempts:      job.Attempts,
		MaxAttempts:   job.MaxAttempts,
		LastError:     job.LastError,
		ProviderID:    job.ProviderID,
		CreatedAt:     job.CreatedAt,
		ScheduledAt:   job.ScheduledAt,
		ProcessedAt:   processedAt,
	}
}
