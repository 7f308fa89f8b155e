// Package repotest provides in-memory stand-ins for the repositories. The
// appointment store enforces the same per-patient slot uniqueness as the
// database index, and patient deletes honour the appointments foreign key.
package repotest

import (
	"CareSlot/models"
	"context"
	"sort"
	"sync"
	"time"
)

// Memory holds the shared state behind Patients and Appointments. After
// Fail, every call returns the injected error.
type Memory struct {
	mu           sync.Mutex
	patients     map[uint]models.Patient
	appointments map[uint]models.Appointment
	nextPatient  uint
	nextAppt     uint

	err error
}

func NewMemory() *Memory {
	return &Memory{
		patients:     make(map[uint]models.Patient),
		appointments: make(map[uint]models.Appointment),
	}
}

func (m *Memory) Patients() *Patients { return &Patients{m: m} }

func (m *Memory) Appointments() *Appointments { return &Appointments{m: m} }

// Patients implements the patient store over Memory.
type Patients struct{ m *Memory }

func (p *Patients) Create(_ context.Context, patient *models.Patient) error {
	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextPatient++
	patient.ID = m.nextPatient
	patient.CreatedAt = time.Now().UTC()
	m.patients[patient.ID] = *patient
	return nil
}

func (p *Patients) GetByID(_ context.Context, id uint) (*models.Patient, error) {
	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	patient, ok := m.patients[id]
	if !ok {
		return nil, models.ErrPatientNotFound
	}
	return &patient, nil
}

func (p *Patients) LoadByID(ctx context.Context, id uint) (*models.Patient, error) {
	return p.GetByID(ctx, id)
}

func (p *Patients) GetAll(_ context.Context) ([]models.Patient, error) {
	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	patients := make([]models.Patient, 0, len(m.patients))
	for _, patient := range m.patients {
		patients = append(patients, patient)
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].ID < patients[j].ID })
	return patients, nil
}

func (p *Patients) Exists(_ context.Context, id uint) (bool, error) {
	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.patients[id]
	return ok, nil
}

func (p *Patients) Update(_ context.Context, patient *models.Patient) error {
	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	current, ok := m.patients[patient.ID]
	if !ok {
		return models.ErrPatientNotFound
	}
	current.Name = patient.Name
	current.Contact = patient.Contact
	m.patients[patient.ID] = current
	return nil
}

func (p *Patients) Delete(_ context.Context, id uint) error {
	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.patients[id]; !ok {
		return models.ErrPatientNotFound
	}
	for _, appointment := range m.appointments {
		if appointment.PatientID == id {
			return models.ErrPatientHasAppointments
		}
	}
	delete(m.patients, id)
	return nil
}

func (p *Patients) DeletePatientAndRelated(_ context.Context, id uint) (int, error) {
	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.patients[id]; !ok {
		return 0, models.ErrPatientNotFound
	}
	removed := 0
	for apptID, appointment := range m.appointments {
		if appointment.PatientID == id {
			delete(m.appointments, apptID)
			removed++
		}
	}
	delete(m.patients, id)
	return removed, nil
}

// Appointments implements the appointment store over Memory.
type Appointments struct{ m *Memory }

// slotHeldLocked reports whether another appointment holds the slot. m.mu
// must be held.
func (m *Memory) slotHeldLocked(patientID uint, date, tm string, excludeID uint) bool {
	for id, appointment := range m.appointments {
		if id == excludeID {
			continue
		}
		if appointment.PatientID == patientID && appointment.Date == date && appointment.Time == tm {
			return true
		}
	}
	return false
}

func (a *Appointments) Create(_ context.Context, appointment *models.Appointment) error {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.slotHeldLocked(appointment.PatientID, appointment.Date, appointment.Time, 0) {
		return models.ErrSlotConflict
	}
	m.nextAppt++
	appointment.ID = m.nextAppt
	appointment.CreatedAt = time.Now().UTC()
	m.appointments[appointment.ID] = *appointment
	return nil
}

func (a *Appointments) GetByID(_ context.Context, id uint) (*models.Appointment, error) {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	appointment, ok := m.appointments[id]
	if !ok {
		return nil, models.ErrAppointmentNotFound
	}
	return &appointment, nil
}

func (a *Appointments) LoadByID(ctx context.Context, id uint) (*models.Appointment, error) {
	return a.GetByID(ctx, id)
}

func (a *Appointments) GetAll(_ context.Context) ([]models.Appointment, error) {
	return a.filter(func(models.Appointment) bool { return true })
}

func (a *Appointments) ListByPatient(_ context.Context, patientID uint) ([]models.Appointment, error) {
	return a.filter(func(appointment models.Appointment) bool { return appointment.PatientID == patientID })
}

func (a *Appointments) filter(keep func(models.Appointment) bool) ([]models.Appointment, error) {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	appointments := []models.Appointment{}
	for _, appointment := range m.appointments {
		if keep(appointment) {
			appointments = append(appointments, appointment)
		}
	}
	sort.Slice(appointments, func(i, j int) bool {
		x, y := appointments[i], appointments[j]
		if x.Date != y.Date {
			return x.Date < y.Date
		}
		if x.Time != y.Time {
			return x.Time < y.Time
		}
		return x.ID < y.ID
	})
	return appointments, nil
}

func (a *Appointments) Update(_ context.Context, appointment *models.Appointment) error {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	current, ok := m.appointments[appointment.ID]
	if !ok {
		return models.ErrAppointmentNotFound
	}
	if m.slotHeldLocked(current.PatientID, appointment.Date, appointment.Time, appointment.ID) {
		return models.ErrSlotConflict
	}
	current.Date = appointment.Date
	current.Time = appointment.Time
	current.Reason = appointment.Reason
	m.appointments[appointment.ID] = current
	return nil
}

func (a *Appointments) Delete(_ context.Context, appointment *models.Appointment) error {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.appointments[appointment.ID]; !ok {
		return models.ErrAppointmentNotFound
	}
	delete(m.appointments, appointment.ID)
	return nil
}

func (a *Appointments) SlotTaken(_ context.Context, patientID uint, date, tm string, excludeID uint) (bool, error) {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.slotHeldLocked(patientID, date, tm, excludeID), nil
}

func (a *Appointments) CountByPatient(_ context.Context, patientID uint) (int64, error) {
	m := a.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var count int64
	for _, appointment := range m.appointments {
		if appointment.PatientID == patientID {
			count++
		}
	}
	return count, nil
}

// Fail sets or clears the injected failure.
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}
