// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// AppointmentModel represents the appointments table in the database.
type AppointmentModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	PatientID uint            `gorm:"not null;index"`
	DoctorID  *uint           `gorm:"index"`
	ServiceID *uint           `gorm:"index"`
	Price     decimal.Decimal `gorm:"type:decimal(11,2);not null"`
	Status    string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	StartTime time.Time       `gorm:"not null"`
	EndTime   *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Relationships (not loaded by default, use Preload)
	Patient *PatientModel `gorm:"foreignKey:PatientID;references:ID"`
	Doctor  *DoctorModel  `gorm:"foreignKey:DoctorID;references:ID;constraint:OnDelete:SET NULL"`
	Service *ServiceModel `gorm:"foreignKey:ServiceID;references:ID;constraint:OnDelete:SET NULL"`
}

// TableName returns the table name for the AppointmentModel.
func (AppointmentModel) TableName() string {
	return "appointments"
}

// ToEntity converts an AppointmentModel to a domain Appointment entity.
func (m *AppointmentModel) ToEntity() *entity.Appointment {
	return &entity.Appointment{
		ID:        m.ID,
		PatientID: m.PatientID,
		DoctorID:  m.DoctorID,
		ServiceID: m.ServiceID,
		Price:     m.Price,
		Status:    entity.AppointmentStatus(m.Status),
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToEntityWithRelations converts an AppointmentModel with preloaded associations.
func (m *AppointmentModel) ToEntityWithRelations(totalPaid decimal.Decimal) *entity.AppointmentWithRelations {
	result := &entity.AppointmentWithRelations{
		Appointment: m.ToEntity(),
		TotalPaid:   totalPaid,
	}
	if m.Patient != nil {
		result.Patient = m.Patient.ToEntity()
	}
	if m.Doctor != nil {
		result.Doctor = m.Doctor.ToEntity()
	}
	if m.Service != nil {
		result.Service = m.Service.ToEntity()
	}
	return result
}

// AppointmentModelFromEntity creates an AppointmentModel from a domain Appointment entity.
func AppointmentModelFromEntity(a *entity.Appointment) *AppointmentModel {
	return &AppointmentModel{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		ServiceID: a.ServiceID,
		Price:     a.Price,
		Status:    string(a.Status),
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
