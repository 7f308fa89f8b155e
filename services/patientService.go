package services

import (
	"CareSlot/metrics"
	"CareSlot/models"
	"CareSlot/utils"
	"context"
)

type PatientService struct {
	patients     PatientStore
	appointments AppointmentStore
	metrics      *metrics.Metrics
}

func NewPatientService(patients PatientStore, appointments AppointmentStore, m *metrics.Metrics) *PatientService {
	return &PatientService{patients: patients, appointments: appointments, metrics: m}
}

func (s *PatientService) Create(ctx context.Context, req utils.CreatePatientRequest) (*models.Patient, error) {
	patient, err := s.create(ctx, req)
	s.metrics.ObserveMutation("patient_create", outcome(err))
	return patient, err
}

func (s *PatientService) create(ctx context.Context, req utils.CreatePatientRequest) (*models.Patient, error) {
	cmd, err := utils.ParseCreatePatient(req)
	if err != nil {
		return nil, err
	}
	patient := &models.Patient{Name: cmd.Name, Contact: cmd.Contact}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *PatientService) Get(ctx context.Context, id uint) (*models.Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	return s.patients.GetAll(ctx)
}

func (s *PatientService) Update(ctx context.Context, id uint, req utils.UpdatePatientRequest) (*models.Patient, error) {
	patient, err := s.update(ctx, id, req)
	s.metrics.ObserveMutation("patient_update", outcome(err))
	return patient, err
}

func (s *PatientService) update(ctx context.Context, id uint, req utils.UpdatePatientRequest) (*models.Patient, error) {
	current, err := s.patients.LoadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, err := utils.MergePatientUpdate(*current, req)
	if err != nil {
		return nil, err
	}
	if err := s.patients.Update(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Delete removes a patient that has no appointments. Patients with
// appointments are rejected with models.ErrPatientHasAppointments.
func (s *PatientService) Delete(ctx context.Context, id uint) error {
	err := s.delete(ctx, id)
	s.metrics.ObserveMutation("patient_delete", outcome(err))
	return err
}

func (s *PatientService) delete(ctx context.Context, id uint) error {
	exists, err := s.patients.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrPatientNotFound
	}

	count, err := s.appointments.CountByPatient(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return models.ErrPatientHasAppointments
	}
	return s.patients.Delete(ctx, id)
}

// DeletePatientAndRelated removes the patient together with its
// appointments and returns how many appointments were removed.
func (s *PatientService) DeletePatientAndRelated(ctx context.Context, id uint) (int, error) {
	removed, err := s.patients.DeletePatientAndRelated(ctx, id)
	s.metrics.ObserveMutation("patient_delete_related", outcome(err))
	return removed, err
}
