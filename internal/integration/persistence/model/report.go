package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// ReportModel represents the reports table in the database.
type ReportModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_reports_date"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Relationships (not loaded by default, use Preload)
	Profits      []ProfitModel      `gorm:"foreignKey:ReportID;references:ID"`
	Consumptions []ConsumptionModel `gorm:"foreignKey:ReportID;references:ID"`
}

// TableName returns the table name for the ReportModel.
func (ReportModel) TableName() string {
	return "reports"
}

// ToEntity converts a ReportModel to a domain Report entity.
func (m *ReportModel) ToEntity() *entity.Report {
	return &entity.Report{
		ID:        m.ID,
		Date:      entity.NormalizeDate(m.Date),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToEntityWithEvents converts a ReportModel with preloaded profits and consumptions.
func (m *ReportModel) ToEntityWithEvents() *entity.ReportWithEvents {
	profits := make([]*entity.ProfitWithAppointment, len(m.Profits))
	for i := range m.Profits {
		p := &m.Profits[i]
		profits[i] = &entity.ProfitWithAppointment{Profit: p.ToEntity()}
		if p.Appointment != nil {
			profits[i].Appointment = p.Appointment.ToEntity()
		}
	}

	consumptions := make([]*entity.Consumption, len(m.Consumptions))
	for i := range m.Consumptions {
		consumptions[i] = m.Consumptions[i].ToEntity()
	}

	return &entity.ReportWithEvents{
		Report:       m.ToEntity(),
		Profits:      profits,
		Consumptions: consumptions,
	}
}

// ProfitModel represents the profits table in the database.
type ProfitModel struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	ReportID      uint            `gorm:"not null;index"`
	AppointmentID uint            `gorm:"not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(11,2);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`

	Report      *ReportModel      `gorm:"foreignKey:ReportID;references:ID;constraint:OnDelete:CASCADE"`
	Appointment *AppointmentModel `gorm:"foreignKey:AppointmentID;references:ID"`
}

// TableName returns the table name for the ProfitModel.
func (ProfitModel) TableName() string {
	return "profits"
}

// ToEntity converts a ProfitModel to a domain Profit entity.
func (m *ProfitModel) ToEntity() *entity.Profit {
	return &entity.Profit{
		ID:            m.ID,
		ReportID:      m.ReportID,
		AppointmentID: m.AppointmentID,
		Amount:        m.Amount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ProfitModelFromEntity creates a ProfitModel from a domain Profit entity.
func ProfitModelFromEntity(p *entity.Profit) *ProfitModel {
	return &ProfitModel{
		ID:            p.ID,
		ReportID:      p.ReportID,
		AppointmentID: p.AppointmentID,
		Amount:        p.Amount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ConsumptionModel represents the consumptions table in the database.
type ConsumptionModel struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	ReportID    uint            `gorm:"not null;index"`
	Title       string          `gorm:"type:varchar(255);not null"`
	Description *string         `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:decimal(11,2);not null"`
	SalaryID    *uint           `gorm:"uniqueIndex:idx_consumptions_salary"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`

	Report *ReportModel `gorm:"foreignKey:ReportID;references:ID;constraint:OnDelete:CASCADE"`
	Salary *SalaryModel `gorm:"foreignKey:SalaryID;references:ID"`
}

// TableName returns the table name for the ConsumptionModel.
func (ConsumptionModel) TableName() string {
	return "consumptions"
}

// ToEntity converts a ConsumptionModel to a domain Consumption entity.
func (m *ConsumptionModel) ToEntity() *entity.Consumption {
	return &entity.Consumption{
		ID:          m.ID,
		ReportID:    m.ReportID,
		Title:       m.Title,
		Description: m.Description,
		Amount:      m.Amount,
		SalaryID:    m.SalaryID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ConsumptionModelFromEntity creates a ConsumptionModel from a domain Consumption entity.
func ConsumptionModelFromEntity(c *entity.Consumption) *ConsumptionModel {
	return &ConsumptionModel{
		ID:          c.ID,
		ReportID:    c.ReportID,
		Title:       c.Title,
		Description: c.Description,
		Amount:      c.Amount,
		SalaryID:    c.SalaryID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// SalaryModel represents the salaries table in the database.
type SalaryModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	DoctorID  uint            `gorm:"not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(11,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`

	Doctor *DoctorModel `gorm:"foreignKey:DoctorID;references:ID"`
}

// TableName returns the table name for the SalaryModel.
func (SalaryModel) TableName() string {
	return "salaries"
}

// ToEntity converts a SalaryModel to a domain Salary entity.
func (m *SalaryModel) ToEntity() *entity.Salary {
	return &entity.Salary{
		ID:        m.ID,
		DoctorID:  m.DoctorID,
		Amount:    m.Amount,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// SalaryModelFromEntity creates a SalaryModel from a domain Salary entity.
func SalaryModelFromEntity(s *entity.Salary) *SalaryModel {
	return &SalaryModel{
		ID:        s.ID,
		DoctorID:  s.DoctorID,
		Amount:    s.Amount,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
