package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// BalanceEntryModel represents the balance_entries table in the database.
// Rows are append-only.
type BalanceEntryModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DoctorID      uint            `gorm:"not null;uniqueIndex:idx_balance_entries_doctor_sequence,priority:1"`
	Sequence      uint64          `gorm:"not null;uniqueIndex:idx_balance_entries_doctor_sequence,priority:2"`
	Kind          string          `gorm:"type:varchar(20);not null"`
	SourceID      uint            `gorm:"not null"`
	Delta         decimal.Decimal `gorm:"type:decimal(11,2);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(11,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(11,2);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the BalanceEntryModel.
func (BalanceEntryModel) TableName() string {
	return "balance_entries"
}

// ToEntity converts a BalanceEntryModel to a domain BalanceEntry entity.
func (m *BalanceEntryModel) ToEntity() *entity.BalanceEntry {
	return &entity.BalanceEntry{
		ID:            m.ID,
		DoctorID:      m.DoctorID,
		Sequence:      m.Sequence,
		Kind:          entity.BalanceEntryKind(m.Kind),
		SourceID:      m.SourceID,
		Delta:         m.Delta,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		CreatedAt:     m.CreatedAt,
	}
}

// BalanceEntryModelFromEntity creates a BalanceEntryModel from a domain BalanceEntry entity.
func BalanceEntryModelFromEntity(e *entity.BalanceEntry) *BalanceEntryModel {
	return &BalanceEntryModel{
		ID:            e.ID,
		DoctorID:      e.DoctorID,
		Sequence:      e.Sequence,
		Kind:          string(e.Kind),
		SourceID:      e.SourceID,
		Delta:         e.Delta,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		CreatedAt:     e.CreatedAt,
	}
}
