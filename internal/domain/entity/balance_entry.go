// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceEntryKind represents the origin of a doctor balance change.
type BalanceEntryKind string

const (
	BalanceEntryProfitShare BalanceEntryKind = "profit_share"
	BalanceEntrySalaryDebit BalanceEntryKind = "salary_debit"
)

// BalanceEntry is an immutable fact recording one change of a doctor's balance.
// Replaying a doctor's entries in order re-derives the current balance.
type BalanceEntry struct {
	ID            uuid.UUID
	DoctorID      uint
	Sequence      uint64 // Position in the doctor's chain, assigned on append
	Kind          BalanceEntryKind
	SourceID      uint // Profit or salary ID
	Delta         decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	CreatedAt     time.Time
}

// NewBalanceEntry creates a balance entry for a change of delta applied on top of before.
func NewBalanceEntry(doctorID uint, kind BalanceEntryKind, sourceID uint, before, delta decimal.Decimal) *BalanceEntry {
	return &BalanceEntry{
		ID:            uuid.New(),
		DoctorID:      doctorID,
		Kind:          kind,
		SourceID:      sourceID,
		Delta:         delta,
		BalanceBefore: before,
		BalanceAfter:  before.Add(delta),
		CreatedAt:     time.Now().UTC(),
	}
}

// DoctorLedger represents a doctor's balance together with its history.
type DoctorLedger struct {
	Doctor  *Doctor
	Entries []*BalanceEntry
}

// BalanceDiscrepancy describes a doctor whose balance does not match the replay of its facts.
type BalanceDiscrepancy struct {
	DoctorID        uint
	DoctorName      string
	RecordedBalance decimal.Decimal
	ExpectedBalance decimal.Decimal
	EntryCount      int
	BrokenChainAt   *uuid.UUID // First entry whose BalanceBefore does not follow its predecessor
}
