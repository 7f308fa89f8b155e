package repositories

import (
	"CareSlot/cache"
	"CareSlot/database"
	"CareSlot/models"
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const queryTimeout = 5 * time.Second

type AppointmentRepository struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewAppointmentRepository(db *gorm.DB, cache *cache.Cache, logger zerolog.Logger) *AppointmentRepository {
	return &AppointmentRepository{db: db, cache: cache, logger: logger.With().Str("repository", "appointment").Logger()}
}

// Create inserts appointment. A unique index violation on the patient's slot
// is reported as models.ErrSlotConflict.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.ErrSlotConflict
		}
		return errors.Wrap(err, "failed to create appointment")
	}
	r.invalidate(ctx, appointment.PatientID, appointment.ID)
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cacheKey := cache.AppointmentKey(id)
	var cached models.Appointment
	if found, err := r.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		r.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to get appointment from cache")
	} else if found {
		return &cached, nil
	}

	appointment, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetJSON(ctx, cacheKey, appointment); err != nil {
		r.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to set appointment in cache")
	}
	return appointment, nil
}

// LoadByID reads the stored row, bypassing the cache. Mutations resolve
// against it so a stale cache entry is never written back.
func (r *AppointmentRepository) LoadByID(ctx context.Context, id uint) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.load(ctx, id)
}

func (r *AppointmentRepository) load(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAppointmentNotFound
		}
		return nil, errors.Wrap(err, "failed to get appointment")
	}
	return &appointment, nil
}

func (r *AppointmentRepository) GetAll(ctx context.Context) ([]models.Appointment, error) {
	return r.list(ctx, cache.AppointmentsKey, func(db *gorm.DB) *gorm.DB { return db })
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	return r.list(ctx, cache.PatientAppointmentsKey(patientID), func(db *gorm.DB) *gorm.DB {
		return db.Where("patient_id = ?", patientID)
	})
}

func (r *AppointmentRepository) list(ctx context.Context, cacheKey string, scope func(*gorm.DB) *gorm.DB) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var cached []models.Appointment
	if found, err := r.cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		r.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to get appointments from cache")
	} else if found {
		return cached, nil
	}

	appointments := []models.Appointment{}
	err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("appointment_date, appointment_time, id").
		Find(&appointments).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list appointments")
	}

	if err := r.cache.SetJSON(ctx, cacheKey, appointments); err != nil {
		r.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to set appointments in cache")
	}
	return appointments, nil
}

// Update writes the mutable fields of appointment. The patient reference and
// creation timestamp are never rewritten.
func (r *AppointmentRepository) Update(ctx context.Context, appointment *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", appointment.ID).
		Updates(map[string]interface{}{
			"appointment_date": appointment.Date,
			"appointment_time": appointment.Time,
			"reason":           appointment.Reason,
		})
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return models.ErrSlotConflict
		}
		return errors.Wrap(res.Error, "failed to update appointment")
	}
	if res.RowsAffected == 0 {
		return models.ErrAppointmentNotFound
	}
	r.invalidate(ctx, appointment.PatientID, appointment.ID)
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, appointment *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, appointment.ID)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete appointment")
	}
	if res.RowsAffected == 0 {
		return models.ErrAppointmentNotFound
	}
	r.invalidate(ctx, appointment.PatientID, appointment.ID)
	return nil
}

// SlotTaken reports whether patientID already holds an appointment at exactly
// date and tm. A non-zero excludeID leaves that appointment out of the search.
func (r *AppointmentRepository) SlotTaken(ctx context.Context, patientID uint, date, tm string, excludeID uint) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("patient_id = ? AND appointment_date = ? AND appointment_time = ?", patientID, date, tm)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check appointment slot")
	}
	return count > 0, nil
}

func (r *AppointmentRepository) CountByPatient(ctx context.Context, patientID uint) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("patient_id = ?", patientID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count patient appointments")
	}
	return count, nil
}

// invalidate drops every cache entry that may hold the given appointments.
// Failures are logged, not returned.
func (r *AppointmentRepository) invalidate(ctx context.Context, patientID uint, ids ...uint) {
	keys := []string{cache.AppointmentsKey, cache.PatientAppointmentsKey(patientID)}
	for _, id := range ids {
		keys = append(keys, cache.AppointmentKey(id))
	}
	if err := r.cache.DeleteBatch(ctx, keys...); err != nil {
		r.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate appointment cache")
	}
}
