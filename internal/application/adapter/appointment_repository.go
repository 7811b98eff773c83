// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/dental-clinic/backend/internal/domain/entity"
)

// AppointmentFilter defines filter options for listing appointments.
// Zero values match everything.
type AppointmentFilter struct {
	DoctorID      *uint
	StartFrom     *time.Time // start_time >= StartFrom
	EndUntil      *time.Time // end_time <= EndUntil
	PatientSearch string     // Case-insensitive match on patient first or last name
}

// AppointmentRepository defines the interface for appointment persistence operations.
type AppointmentRepository interface {
	// FindAll retrieves the appointments matching filter with patient, doctor and service loaded.
	FindAll(ctx context.Context, filter AppointmentFilter) ([]*entity.AppointmentWithRelations, error)

	// FindByID retrieves an appointment with its relations.
	FindByID(ctx context.Context, id uint) (*entity.AppointmentWithRelations, error)

	// Save creates or updates an appointment. Saving an existing appointment
	// re-derives its payment status from its recorded profits.
	Save(ctx context.Context, appointment *entity.Appointment) error
}

// DoctorRepository defines the interface for doctor balance reads.
type DoctorRepository interface {
	// FindByID retrieves a doctor by ID.
	FindByID(ctx context.Context, id uint) (*entity.Doctor, error)

	// FindAll retrieves all doctors.
	FindAll(ctx context.Context) ([]*entity.Doctor, error)

	// ListBalanceEntries retrieves a doctor's balance facts in the order they were applied.
	ListBalanceEntries(ctx context.Context, doctorID uint) ([]*entity.BalanceEntry, error)
}
