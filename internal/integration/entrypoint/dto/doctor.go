// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dental-clinic/backend/internal/application/usecase/finance"
	"github.com/dental-clinic/backend/internal/domain/entity"
)

// DoctorBalanceResponse represents a doctor and the current balance.
type DoctorBalanceResponse struct {
	ID        uint            `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalanceEntryResponse represents one balance fact.
type BalanceEntryResponse struct {
	ID            string          `json:"id"`
	Sequence      uint64          `json:"sequence"`
	Kind          string          `json:"kind"`
	SourceID      uint            `json:"source_id"`
	Delta         decimal.Decimal `json:"delta"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DoctorLedgerResponse represents a doctor's balance with its history.
type DoctorLedgerResponse struct {
	Doctor  DoctorBalanceResponse  `json:"doctor"`
	Entries []BalanceEntryResponse `json:"entries"`
}

// BalanceDiscrepancyResponse represents a doctor whose balance failed reconciliation.
type BalanceDiscrepancyResponse struct {
	DoctorID        uint            `json:"doctor_id"`
	DoctorName      string          `json:"doctor_name"`
	RecordedBalance decimal.Decimal `json:"recorded_balance"`
	ExpectedBalance decimal.Decimal `json:"expected_balance"`
	EntryCount      int             `json:"entry_count"`
	BrokenChainAt   *string         `json:"broken_chain_at,omitempty"`
}

// ReconcileBalancesResponse represents the outcome of a reconciliation run.
type ReconcileBalancesResponse struct {
	DoctorsChecked int                          `json:"doctors_checked"`
	Consistent     bool                         `json:"consistent"`
	Discrepancies  []BalanceDiscrepancyResponse `json:"discrepancies"`
}

// ToBalanceEntryResponse converts a balance entry to a DTO.
func ToBalanceEntryResponse(e *entity.BalanceEntry) BalanceEntryResponse {
	return BalanceEntryResponse{
		ID:            e.ID.String(),
		Sequence:      e.Sequence,
		Kind:          string(e.Kind),
		SourceID:      e.SourceID,
		Delta:         e.Delta,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		CreatedAt:     e.CreatedAt,
	}
}

// ToDoctorLedgerResponse converts a doctor ledger to a DTO.
func ToDoctorLedgerResponse(l *entity.DoctorLedger) DoctorLedgerResponse {
	response := DoctorLedgerResponse{
		Doctor: DoctorBalanceResponse{
			ID:        l.Doctor.ID,
			FirstName: l.Doctor.FirstName,
			LastName:  l.Doctor.LastName,
			Balance:   l.Doctor.Balance,
		},
		Entries: make([]BalanceEntryResponse, 0, len(l.Entries)),
	}
	for _, e := range l.Entries {
		response.Entries = append(response.Entries, ToBalanceEntryResponse(e))
	}
	return response
}

// ToReconcileBalancesResponse converts a reconciliation outcome to a DTO.
func ToReconcileBalancesResponse(output *finance.ReconcileBalancesOutput) ReconcileBalancesResponse {
	response := ReconcileBalancesResponse{
		DoctorsChecked: output.DoctorsChecked,
		Consistent:     len(output.Discrepancies) == 0,
		Discrepancies:  make([]BalanceDiscrepancyResponse, 0, len(output.Discrepancies)),
	}
	for _, d := range output.Discrepancies {
		item := BalanceDiscrepancyResponse{
			DoctorID:        d.DoctorID,
			DoctorName:      d.DoctorName,
			RecordedBalance: d.RecordedBalance,
			ExpectedBalance: d.ExpectedBalance,
			EntryCount:      d.EntryCount,
		}
		if d.BrokenChainAt != nil {
			id := d.BrokenChainAt.String()
			item.BrokenChainAt = &id
		}
		response.Discrepancies = append(response.Discrepancies, item)
	}
	return response
}
