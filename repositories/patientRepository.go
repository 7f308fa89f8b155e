package repositories

import (
	"CareSlot/cache"
	"CareSlot/database"
	"CareSlot/models"
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type PatientRepository struct {
	db              *gorm.DB
	cache           *cache.Cache
	appointmentRepo *AppointmentRepository
	logger          zerolog.Logger
}

func NewPatientRepository(
	db *gorm.DB,
	cache *cache.Cache,
	appointmentRepo *AppointmentRepository,
	logger zerolog.Logger,
) *PatientRepository {
	return &PatientRepository{
		db:              db,
		cache:           cache,
		appointmentRepo: appointmentRepo,
		logger:          logger.With().Str("repository", "patient").Logger(),
	}
}

func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return errors.Wrap(err, "failed to create patient")
	}
	r.invalidate(ctx, patient.ID)
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cacheKey := cache.PatientKey(id)
	var cached models.Patient
	if found, err := r.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		r.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to get patient from cache")
	} else if found {
		return &cached, nil
	}

	patient, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetJSON(ctx, cacheKey, patient); err != nil {
		r.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to set patient in cache")
	}
	return patient, nil
}

// LoadByID reads the stored patient without consulting the cache.
func (r *PatientRepository) LoadByID(ctx context.Context, id uint) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.load(ctx, id)
}

func (r *PatientRepository) load(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPatientNotFound
		}
		return nil, errors.Wrap(err, "failed to get patient")
	}
	return &patient, nil
}

func (r *PatientRepository) GetAll(ctx context.Context) ([]models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var cached []models.Patient
	if found, err := r.cache.GetJSON(ctx, cache.PatientsKey, &cached); err != nil {
		r.logger.Warn().Err(err).Msg("failed to get patients from cache")
	} else if found {
		return cached, nil
	}

	patients := []models.Patient{}
	if err := r.db.WithContext(ctx).Order("id").Find(&patients).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get all patients")
	}

	if err := r.cache.SetJSON(ctx, cache.PatientsKey, patients); err != nil {
		r.logger.Warn().Err(err).Msg("failed to set patients in cache")
	}
	return patients, nil
}

// Exists looks the patient up in storage, bypassing the cache. A missing row
// is (false, nil); a storage failure is returned as an error.
func (r *PatientRepository) Exists(ctx context.Context, id uint) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check patient existence")
	}
	return count > 0, nil
}

func (r *PatientRepository) Update(ctx context.Context, patient *models.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&models.Patient{}).
		Where("id = ?", patient.ID).
		Updates(map[string]interface{}{
			"name":    patient.Name,
			"contact": patient.Contact,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update patient")
	}
	if res.RowsAffected == 0 {
		return models.ErrPatientNotFound
	}
	r.invalidate(ctx, patient.ID)
	return nil
}

// Delete removes a patient row. The appointments foreign key rejects the
// delete while appointments still reference the patient.
func (r *PatientRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(&models.Patient{}, id)
	if res.Error != nil {
		if database.IsForeignKeyViolation(res.Error) {
			return models.ErrPatientHasAppointments
		}
		return errors.Wrap(res.Error, "failed to delete patient")
	}
	if res.RowsAffected == 0 {
		return models.ErrPatientNotFound
	}
	r.invalidate(ctx, id)
	return nil
}

// DeletePatientAndRelated removes the patient and all of its appointments in
// one transaction and returns how many appointments went with it.
func (r *PatientRepository) DeletePatientAndRelated(ctx context.Context, id uint) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var appointmentIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Appointment{}).Where("patient_id = ?", id).Pluck("id", &appointmentIDs).Error; err != nil {
			return errors.Wrap(err, "failed to collect patient appointments")
		}
		if err := tx.Where("patient_id = ?", id).Delete(&models.Appointment{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete patient appointments")
		}
		res := tx.Delete(&models.Patient{}, id)
		if res.Error != nil {
			if database.IsForeignKeyViolation(res.Error) {
				return models.ErrPatientHasAppointments
			}
			return errors.Wrap(res.Error, "failed to delete patient")
		}
		if res.RowsAffected == 0 {
			return models.ErrPatientNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.invalidate(ctx, id)
	r.appointmentRepo.invalidate(ctx, id, appointmentIDs...)
	return len(appointmentIDs), nil
}

func (r *PatientRepository) invalidate(ctx context.Context, id uint) {
	if err := r.cache.DeleteBatch(ctx, cache.PatientKey(id), cache.PatientsKey); err != nil {
		r.logger.Warn().Err(err).Uint("patient_id", id).Msg("failed to invalidate patient cache")
	}
}
