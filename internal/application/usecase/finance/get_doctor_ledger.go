package finance

import (
	"context"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// GetDoctorLedgerInput represents the input for reading a doctor's balance history.
type GetDoctorLedgerInput struct {
	DoctorID      uint
	RequesterID   uint
	RequesterRole entity.UserRole
}

// GetDoctorLedgerUseCase returns a doctor's balance together with its balance facts.
type GetDoctorLedgerUseCase struct {
	doctorRepo adapter.DoctorRepository
}

// NewGetDoctorLedgerUseCase creates a new GetDoctorLedgerUseCase instance.
func NewGetDoctorLedgerUseCase(doctorRepo adapter.DoctorRepository) *GetDoctorLedgerUseCase {
	return &GetDoctorLedgerUseCase{
		doctorRepo: doctorRepo,
	}
}

// Execute performs the ledger retrieval. Doctors may only read their own ledger.
func (uc *GetDoctorLedgerUseCase) Execute(ctx context.Context, input GetDoctorLedgerInput) (*entity.DoctorLedger, error) {
	ctx, span := tracer.Start(ctx, "finance.GetDoctorLedger")
	defer span.End()

	if input.RequesterRole != entity.UserRoleAdmin &&
		(input.RequesterRole != entity.UserRoleDoctor || input.RequesterID != input.DoctorID) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeForbiddenRole,
			"not allowed to read this ledger",
			domainerror.ErrForbiddenRole,
		)
	}

	doctor, err := uc.doctorRepo.FindByID(ctx, input.DoctorID)
	if err != nil {
		return nil, toFinanceError(err)
	}

	entries, err := uc.doctorRepo.ListBalanceEntries(ctx, doctor.ID)
	if err != nil {
		return nil, domainerror.NewFinanceInternalError("failed to load balance entries", err)
	}

	return &entity.DoctorLedger{
		Doctor:  doctor,
		Entries: entries,
	}, nil
}
