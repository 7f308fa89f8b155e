package services

import (
	"CareSlot/metrics"
	"CareSlot/models"
	"CareSlot/utils"
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const slotLockTTL = 10 * time.Second

type AppointmentService struct {
	appointments AppointmentStore
	patients     PatientGate
	locker       SlotLocker
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewAppointmentService wires the service. locker may be nil, in which case
// slots are guarded by the storage unique index alone.
func NewAppointmentService(
	appointments AppointmentStore,
	patients PatientGate,
	locker SlotLocker,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		patients:     patients,
		locker:       locker,
		metrics:      m,
		logger:       logger.With().Str("service", "appointment").Logger(),
	}
}

// Create validates req, checks the patient and the slot, and stores the
// appointment. Checks run in a fixed order and the first failure is returned.
func (s *AppointmentService) Create(ctx context.Context, req utils.CreateAppointmentRequest) (*models.Appointment, error) {
	appointment, err := s.create(ctx, req)
	s.metrics.ObserveMutation("appointment_create", outcome(err))
	return appointment, err
}

func (s *AppointmentService) create(ctx context.Context, req utils.CreateAppointmentRequest) (*models.Appointment, error) {
	cmd, err := utils.ParseCreateAppointment(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.patients.Exists(ctx, cmd.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrPatientNotFound
	}

	taken, err := s.appointments.SlotTaken(ctx, cmd.PatientID, cmd.Date, cmd.Time, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.ErrSlotConflict
	}

	release, err := s.lockSlot(ctx, cmd.PatientID, models.Slot{Date: cmd.Date, Time: cmd.Time})
	if err != nil {
		return nil, err
	}
	defer release()

	appointment := &models.Appointment{
		PatientID: cmd.PatientID,
		Date:      cmd.Date,
		Time:      cmd.Time,
		Reason:    cmd.Reason,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Update loads the appointment before looking at req, so an unknown id is
// reported ahead of any field error. The conflict check is skipped when the
// slot does not move.
func (s *AppointmentService) Update(ctx context.Context, id uint, req utils.UpdateAppointmentRequest) (*models.Appointment, error) {
	appointment, err := s.update(ctx, id, req)
	s.metrics.ObserveMutation("appointment_update", outcome(err))
	return appointment, err
}

func (s *AppointmentService) update(ctx context.Context, id uint, req utils.UpdateAppointmentRequest) (*models.Appointment, error) {
	current, err := s.appointments.LoadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, err := utils.MergeAppointmentUpdate(*current, req)
	if err != nil {
		return nil, err
	}

	if merged.Slot() != current.Slot() {
		taken, err := s.appointments.SlotTaken(ctx, merged.PatientID, merged.Date, merged.Time, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.ErrSlotConflict
		}

		release, err := s.lockSlot(ctx, merged.PatientID, merged.Slot())
		if err != nil {
			return nil, err
		}
		defer release()
	}

	if err := s.appointments.Update(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uint) error {
	err := s.delete(ctx, id)
	s.metrics.ObserveMutation("appointment_delete", outcome(err))
	return err
}

func (s *AppointmentService) delete(ctx context.Context, id uint) error {
	appointment, err := s.appointments.LoadByID(ctx, id)
	if err != nil {
		return err
	}
	return s.appointments.Delete(ctx, appointment)
}

func (s *AppointmentService) Get(ctx context.Context, id uint) (*models.Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context) ([]models.Appointment, error) {
	return s.appointments.GetAll(ctx)
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error) {
	exists, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.ErrPatientNotFound
	}
	return s.appointments.ListByPatient(ctx, patientID)
}

func slotLockKey(patientID uint, slot models.Slot) string {
	return fmt.Sprintf("appointment_slot_lock:%d:%s:%s", patientID, slot.Date, slot.Time)
}

// lockSlot takes the slot lock in a single attempt. A lock held elsewhere is
// a conflict. The returned func releases the lock.
func (s *AppointmentService) lockSlot(ctx context.Context, patientID uint, slot models.Slot) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	key := slotLockKey(patientID, slot)
	token, ok, err := s.locker.Acquire(ctx, key, slotLockTTL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire slot lock")
	}
	if !ok {
		return nil, models.ErrSlotConflict
	}

	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to release slot lock")
		}
	}, nil
}

func outcome(err error) string {
	var fieldErr *utils.FieldError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &fieldErr):
		return metrics.OutcomeInvalid
	case errors.Is(err, models.ErrPatientNotFound), errors.Is(err, models.ErrAppointmentNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, models.ErrSlotConflict), errors.Is(err, models.ErrPatientHasAppointments):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}
