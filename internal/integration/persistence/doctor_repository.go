package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/domain/entity"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

// doctorRepository implements the adapter.DoctorRepository interface.
type doctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository creates a new doctor repository instance.
func NewDoctorRepository(db *gorm.DB) adapter.DoctorRepository {
	return &doctorRepository{
		db: db,
	}
}

// FindByID retrieves a doctor by ID.
func (r *doctorRepository) FindByID(ctx context.Context, id uint) (*entity.Doctor, error) {
	var doctorModel model.DoctorModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&doctorModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrDoctorNotFound
		}
		return nil, result.Error
	}
	return doctorModel.ToEntity(), nil
}

// FindAll retrieves all doctors ordered by ID.
func (r *doctorRepository) FindAll(ctx context.Context) ([]*entity.Doctor, error) {
	var models []model.DoctorModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	doctors := make([]*entity.Doctor, len(models))
	for i := range models {
		doctors[i] = models[i].ToEntity()
	}
	return doctors, nil
}

// ListBalanceEntries retrieves a doctor's balance facts in chain order.
func (r *doctorRepository) ListBalanceEntries(ctx context.Context, doctorID uint) ([]*entity.BalanceEntry, error) {
	var models []model.BalanceEntryModel
	result := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("sequence ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]*entity.BalanceEntry, len(models))
	for i := range models {
		entries[i] = models[i].ToEntity()
	}
	return entries, nil
}
