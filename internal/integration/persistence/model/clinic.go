package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// DoctorModel represents the doctors table in the database.
// Only Balance is written by the finance core.
type DoctorModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	FirstName string          `gorm:"type:varchar(100);not null"`
	LastName  string          `gorm:"type:varchar(100)"`
	Phone     string          `gorm:"type:varchar(20)"`
	Balance   decimal.Decimal `gorm:"type:decimal(11,2);not null;default:0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the DoctorModel.
func (DoctorModel) TableName() string {
	return "doctors"
}

// ToEntity converts a DoctorModel to a domain Doctor entity.
func (m *DoctorModel) ToEntity() *entity.Doctor {
	return &entity.Doctor{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// DoctorModelFromEntity creates a DoctorModel from a domain Doctor entity.
func DoctorModelFromEntity(d *entity.Doctor) *DoctorModel {
	return &DoctorModel{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
		Balance:   d.Balance,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// PatientModel represents the patients table in the database.
type PatientModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	FirstName string    `gorm:"type:varchar(100);not null"`
	LastName  string    `gorm:"type:varchar(100)"`
	Phone     string    `gorm:"type:varchar(20)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the PatientModel.
func (PatientModel) TableName() string {
	return "patients"
}

// ToEntity converts a PatientModel to a domain Patient entity.
func (m *PatientModel) ToEntity() *entity.Patient {
	return &entity.Patient{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// PatientModelFromEntity creates a PatientModel from a domain Patient entity.
func PatientModelFromEntity(p *entity.Patient) *PatientModel {
	return &PatientModel{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ServiceModel represents the services table in the database.
type ServiceModel struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	Name       string          `gorm:"type:varchar(255);not null"`
	Price      decimal.Decimal `gorm:"type:decimal(11,2);not null"`
	KPIPercent decimal.Decimal `gorm:"column:kpi_percent;type:decimal(5,2);not null;default:0"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for the ServiceModel.
func (ServiceModel) TableName() string {
	return "services"
}

// ToEntity converts a ServiceModel to a domain Service entity.
func (m *ServiceModel) ToEntity() *entity.Service {
	return &entity.Service{
		ID:         m.ID,
		Name:       m.Name,
		Price:      m.Price,
		KPIPercent: m.KPIPercent,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// ServiceModelFromEntity creates a ServiceModel from a domain Service entity.
func ServiceModelFromEntity(s *entity.Service) *ServiceModel {
	return &ServiceModel{
		ID:         s.ID,
		Name:       s.Name,
		Price:      s.Price,
		KPIPercent: s.KPIPercent,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
