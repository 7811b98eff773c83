package persistence

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

// appointmentRepository implements the adapter.AppointmentRepository interface.
type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository instance.
func NewAppointmentRepository(db *gorm.DB) adapter.AppointmentRepository {
	return &appointmentRepository{
		db: db,
	}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Patient").Preload("Doctor").Preload("Service")
}

// FindAll retrieves the appointments matching filter with their relations and paid totals.
func (r *appointmentRepository) FindAll(ctx context.Context, filter adapter.AppointmentFilter) ([]*entity.AppointmentWithRelations, error) {
	query := withRelations(r.db.WithContext(ctx)).Model(&model.AppointmentModel{})

	if filter.DoctorID != nil {
		query = query.Where("appointments.doctor_id = ?", *filter.DoctorID)
	}
	if filter.StartFrom != nil {
		query = query.Where("appointments.start_time >= ?", filter.StartFrom.UTC())
	}
	if filter.EndUntil != nil {
		query = query.Where("appointments.end_time <= ?", filter.EndUntil.UTC())
	}
	if search := strings.TrimSpace(filter.PatientSearch); search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("JOIN patients ON patients.id = appointments.patient_id").
			Where("LOWER(patients.first_name) LIKE ? OR LOWER(patients.last_name) LIKE ?", searchPattern, searchPattern)
	}

	var models []model.AppointmentModel
	result := query.
		Order("appointments.start_time DESC, appointments.id DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	ids := make([]uint, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}
	totals, err := r.paidTotals(ctx, ids)
	if err != nil {
		return nil, err
	}

	appointments := make([]*entity.AppointmentWithRelations, len(models))
	for i := range models {
		total, ok := totals[models[i].ID]
		if !ok {
			total = decimal.Zero
		}
		appointments[i] = models[i].ToEntityWithRelations(total)
	}
	return appointments, nil
}

// FindByID retrieves an appointment with its relations.
func (r *appointmentRepository) FindByID(ctx context.Context, id uint) (*entity.AppointmentWithRelations, error) {
	var appointmentModel model.AppointmentModel
	result := withRelations(r.db.WithContext(ctx)).Where("id = ?", id).First(&appointmentModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrAppointmentNotFound
		}
		return nil, result.Error
	}

	total, err := sumProfits(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return appointmentModel.ToEntityWithRelations(total), nil
}

// Save creates or updates an appointment. An existing appointment has its
// payment status re-derived from its profits in the same transaction.
func (r *appointmentRepository) Save(ctx context.Context, appointment *entity.Appointment) error {
	now := time.Now().UTC()
	if appointment.Status == "" {
		appointment.Status = entity.AppointmentStatusPending
	}

	if appointment.ID == 0 {
		appointment.CreatedAt, appointment.UpdatedAt = now, now
		appointmentModel := model.AppointmentModelFromEntity(appointment)
		if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(appointmentModel).Error; err != nil {
			return err
		}
		appointment.ID = appointmentModel.ID
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked model.AppointmentModel
		lockResult := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", appointment.ID).
			First(&locked)
		if lockResult.Error != nil {
			if errors.Is(lockResult.Error, gorm.ErrRecordNotFound) {
				return domainerror.ErrAppointmentNotFound
			}
			return lockResult.Error
		}

		total, err := sumProfits(ctx, tx, appointment.ID)
		if err != nil {
			return err
		}

		status, overpaid := entity.DerivePaymentStatus(appointment.Status, appointment.Price, total)
		if overpaid {
			slog.Warn("Appointment overpaid, flagged for manual review",
				"appointment_id", appointment.ID,
				"price", appointment.Price.StringFixed(2),
				"total_paid", total.StringFixed(2),
			)
		}
		appointment.Status = status
		appointment.UpdatedAt = now

		appointmentModel := model.AppointmentModelFromEntity(appointment)
		result := tx.WithContext(ctx).
			Model(&model.AppointmentModel{ID: appointment.ID}).
			Select("patient_id", "doctor_id", "service_id", "price", "status", "start_time", "end_time", "updated_at").
			Updates(appointmentModel)
		return result.Error
	})
}

// paidTotals sums profits for a set of appointments in one query.
func (r *appointmentRepository) paidTotals(ctx context.Context, ids []uint) (map[uint]decimal.Decimal, error) {
	totals := make(map[uint]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return totals, nil
	}

	var rows []struct {
		AppointmentID uint
		Amount        decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.ProfitModel{}).
		Select("appointment_id, amount").
		Where("appointment_id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.AppointmentID] = totals[row.AppointmentID].Add(row.Amount)
	}
	return totals, nil
}
