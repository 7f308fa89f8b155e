package services

import (
	"CareSlot/models"
	"context"
	"time"
)

// PatientStore is the patient persistence used by PatientService.
type PatientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id uint) (*models.Patient, error)
	LoadByID(ctx context.Context, id uint) (*models.Patient, error)
	GetAll(ctx context.Context) ([]models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id uint) error
	DeletePatientAndRelated(ctx context.Context, id uint) (int, error)
	PatientGate
}

// PatientGate answers whether a patient exists. A missing patient is
// (false, nil); only storage failures are errors.
type PatientGate interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// AppointmentStore is the appointment persistence used by the services.
type AppointmentStore interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	LoadByID(ctx context.Context, id uint) (*models.Appointment, error)
	GetAll(ctx context.Context) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID uint) ([]models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error
	Delete(ctx context.Context, appointment *models.Appointment) error
	SlotTaken(ctx context.Context, patientID uint, date, tm string, excludeID uint) (bool, error)
	CountByPatient(ctx context.Context, patientID uint) (int64, error)
}

// SlotLocker is a short-lived mutual exclusion keyed by slot.
type SlotLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}
