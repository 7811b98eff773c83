package finance

import (
	"context"
	"time"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
)

// ListAppointmentsInput represents the input for listing appointments.
type ListAppointmentsInput struct {
	DoctorID      *uint
	StartFrom     *time.Time
	EndUntil      *time.Time
	PatientSearch string
}

// ListAppointmentsUseCase returns the matching appointments with their relations loaded.
type ListAppointmentsUseCase struct {
	appointmentRepo adapter.AppointmentRepository
}

// NewListAppointmentsUseCase creates a new ListAppointmentsUseCase instance.
func NewListAppointmentsUseCase(appointmentRepo adapter.AppointmentRepository) *ListAppointmentsUseCase {
	return &ListAppointmentsUseCase{
		appointmentRepo: appointmentRepo,
	}
}

// Execute performs the appointment listing.
func (uc *ListAppointmentsUseCase) Execute(ctx context.Context, input ListAppointmentsInput) ([]*entity.AppointmentWithRelations, error) {
	ctx, span := tracer.Start(ctx, "finance.ListAppointments")
	defer span.End()

	if input.StartFrom != nil && input.EndUntil != nil && input.EndUntil.Before(*input.StartFrom) {
		return nil, domainerror.NewFinanceValidationError(
			domainerror.ErrCodeInvalidDateRange,
			"end_time",
			"end_time must not be before start_time",
			domainerror.ErrInvalidDateRange,
		)
	}

	appointments, err := uc.appointmentRepo.FindAll(ctx, adapter.AppointmentFilter{
		DoctorID:      input.DoctorID,
		StartFrom:     input.StartFrom,
		EndUntil:      input.EndUntil,
		PatientSearch: input.PatientSearch,
	})
	if err != nil {
		return nil, domainerror.NewFinanceInternalError("failed to list appointments", err)
	}
	return appointments, nil
}
