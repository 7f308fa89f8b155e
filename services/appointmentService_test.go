package services

import (
	"CareSlot/metrics"
	"CareSlot/models"
	"CareSlot/repositories/repotest"
	"CareSlot/utils"
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appointmentFixture struct {
	svc    *AppointmentService
	mem    *repotest.Memory
	locker *repotest.Locker
	ctx    context.Context
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	mem := repotest.NewMemory()
	locker := repotest.NewLocker()
	return &appointmentFixture{
		svc:    NewAppointmentService(mem.Appointments(), mem.Patients(), locker, nil, zerolog.Nop()),
		mem:    mem,
		locker: locker,
		ctx:    context.Background(),
	}
}

func (f *appointmentFixture) addPatient(t *testing.T, name string) uint {
	t.Helper()
	patient := &models.Patient{Name: name}
	require.NoError(t, f.mem.Patients().Create(f.ctx, patient))
	return patient.ID
}

func createRequest(t *testing.T, body string) utils.CreateAppointmentRequest {
	t.Helper()
	var req utils.CreateAppointmentRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func updateRequest(t *testing.T, body string) utils.UpdateAppointmentRequest {
	t.Helper()
	var req utils.UpdateAppointmentRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestCreateAppointment(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Bob")
	f.addPatient(t, "Ann")

	got, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":2,"date":"2025-08-20","time":"14:30","reason":"  checkup "}`))
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, uint(2), got.PatientID)
	assert.Equal(t, "checkup", got.Reason)

	key := slotLockKey(2, models.Slot{Date: "2025-08-20", Time: "14:30"})
	assert.Equal(t, []string{"acquire " + key, "release " + key}, f.locker.Events)
	assert.False(t, f.locker.Held(key))
}

func TestCreateAppointmentUnknownPatient(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":999,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	assert.ErrorIs(t, err, models.ErrPatientNotFound)
	assert.Empty(t, f.locker.Events)
}

func TestCreateAppointmentValidatesBeforeStorage(t *testing.T) {
	f := newAppointmentFixture(t)

	// The patient does not exist, but the malformed date is reported first.
	_, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":999,"date":"2025/08/20","time":"14:30","reason":"x"}`))
	var fieldErr *utils.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "date", fieldErr.Field)
	assert.NotErrorIs(t, err, models.ErrPatientNotFound)
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	f := newAppointmentFixture(t)
	patientID := f.addPatient(t, "Ann")
	other := f.addPatient(t, "Bob")

	body := `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`
	_, err := f.svc.Create(f.ctx, createRequest(t, body))
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, createRequest(t, body))
	assert.ErrorIs(t, err, models.ErrSlotConflict)

	// Same time on another date, and the same slot for another patient, are both free.
	_, err = f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-21","time":"14:30","reason":"x"}`))
	assert.NoError(t, err)
	_, err = f.svc.Create(f.ctx, createRequest(t, `{"patientId":2,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	assert.NoError(t, err)

	list, err := f.svc.ListByPatient(f.ctx, patientID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	list, err = f.svc.ListByPatient(f.ctx, other)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateAppointmentLockContention(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Ann")
	f.locker.Hold(slotLockKey(1, models.Slot{Date: "2025-08-20", Time: "14:30"}))

	_, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	assert.ErrorIs(t, err, models.ErrSlotConflict)

	all, err := f.svc.List(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAppointmentLockFailure(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Ann")
	f.locker.Fail(errors.New("redis: connection refused"))

	_, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrSlotConflict)
}

func TestCreateAppointmentWithoutLocker(t *testing.T) {
	mem := repotest.NewMemory()
	svc := NewAppointmentService(mem.Appointments(), mem.Patients(), nil, nil, zerolog.Nop())
	require.NoError(t, mem.Patients().Create(context.Background(), &models.Patient{Name: "Ann"}))

	_, err := svc.Create(context.Background(), createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	assert.NoError(t, err)
}

func TestCreateAppointmentStorageFailure(t *testing.T) {
	f := newAppointmentFixture(t)
	f.mem.Fail(errors.New("connection refused"))

	_, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrPatientNotFound)
	assert.Equal(t, metrics.OutcomeError, outcome(err))
}

func TestUpdateAppointment(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Ann")
	created, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"checkup"}`))
	require.NoError(t, err)

	got, err := f.svc.Update(f.ctx, created.ID, updateRequest(t, `{"time":"15:00"}`))
	require.NoError(t, err)
	assert.Equal(t, "2025-08-20", got.Date)
	assert.Equal(t, "15:00", got.Time)
	assert.Equal(t, "checkup", got.Reason)

	stored, err := f.svc.Get(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Slot(), stored.Slot())
}

func TestUpdateAppointmentUnknownIDBeforeValidation(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.Update(f.ctx, 42, updateRequest(t, `{"date":"not-a-date"}`))
	assert.ErrorIs(t, err, models.ErrAppointmentNotFound)
}

func TestUpdateAppointmentKeepsSlotWithoutConflictCheck(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Ann")
	created, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"checkup"}`))
	require.NoError(t, err)
	f.locker.Events = nil

	got, err := f.svc.Update(f.ctx, created.ID, updateRequest(t, `{"date":"2025-08-20","time":"14:30","reason":"follow-up"}`))
	require.NoError(t, err)
	assert.Equal(t, "follow-up", got.Reason)
	assert.Empty(t, f.locker.Events)

	got, err = f.svc.Update(f.ctx, created.ID, updateRequest(t, `{"reason":"   "}`))
	require.NoError(t, err)
	assert.Equal(t, "follow-up", got.Reason)
}

func TestUpdateAppointmentConflict(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Ann")
	_, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	require.NoError(t, err)
	second, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"16:00","reason":"x"}`))
	require.NoError(t, err)

	_, err = f.svc.Update(f.ctx, second.ID, updateRequest(t, `{"time":"14:30"}`))
	assert.ErrorIs(t, err, models.ErrSlotConflict)

	stored, err := f.svc.Get(f.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "16:00", stored.Time)
}

func TestUpdateAppointmentIntoAnotherPatientsSlot(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Ann")
	f.addPatient(t, "Bob")
	_, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":2,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	require.NoError(t, err)
	own, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"16:00","reason":"x"}`))
	require.NoError(t, err)

	got, err := f.svc.Update(f.ctx, own.ID, updateRequest(t, `{"time":"14:30"}`))
	require.NoError(t, err)
	assert.Equal(t, "14:30", got.Time)
	assert.Equal(t, uint(1), got.PatientID)

	stored, err := f.svc.Get(f.ctx, own.ID)
	require.NoError(t, err)
	assert.Equal(t, "14:30", stored.Time)
}

func TestUpdateAppointmentInvalidFields(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Ann")
	created, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	require.NoError(t, err)

	for body, field := range map[string]string{
		`{"time":"3pm"}`:      "time",
		`{"date":"20-08-25"}`: "date",
		`{"reason":12}`:       "reason",
	} {
		_, err := f.svc.Update(f.ctx, created.ID, updateRequest(t, body))
		var fieldErr *utils.FieldError
		require.ErrorAs(t, err, &fieldErr, body)
		assert.Equal(t, field, fieldErr.Field, body)
	}
}

func TestDeleteAppointment(t *testing.T) {
	f := newAppointmentFixture(t)
	f.addPatient(t, "Ann")
	created, err := f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, created.ID))
	_, err = f.svc.Get(f.ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrAppointmentNotFound)
	assert.ErrorIs(t, f.svc.Delete(f.ctx, created.ID), models.ErrAppointmentNotFound)

	// The slot is free again.
	_, err = f.svc.Create(f.ctx, createRequest(t, `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`))
	assert.NoError(t, err)
}

func TestListByUnknownPatient(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.svc.ListByPatient(f.ctx, 7)
	assert.ErrorIs(t, err, models.ErrPatientNotFound)
}

func TestMutationOutcomesAreCounted(t *testing.T) {
	mem := repotest.NewMemory()
	reg := prometheus.NewRegistry()
	svc := NewAppointmentService(mem.Appointments(), mem.Patients(), nil, metrics.New(reg), zerolog.Nop())
	require.NoError(t, mem.Patients().Create(context.Background(), &models.Patient{Name: "Ann"}))

	body := `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`
	_, err := svc.Create(context.Background(), createRequest(t, body))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), createRequest(t, body))
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	outcomes := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "careslot_appointments_mutations_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" {
					outcomes[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{metrics.OutcomeOK: 1, metrics.OutcomeConflict: 1}, outcomes)
}
