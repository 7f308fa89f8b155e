package handlers

import (
	"CareSlot/repositories/repotest"
	"CareSlot/services"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := repotest.NewMemory()
	patients := NewPatientHandler(services.NewPatientService(mem.Patients(), mem.Appointments(), nil))
	appointments := NewAppointmentHandler(services.NewAppointmentService(mem.Appointments(), mem.Patients(), repotest.NewLocker(), nil, zerolog.Nop()))

	r := gin.New()
	r.POST("/patients", patients.CreatePatient)
	r.GET("/patients/:patient_id", patients.GetPatientByID)
	r.PUT("/patients/:patient_id", patients.UpdatePatient)
	r.DELETE("/patients/:patient_id", patients.DeletePatient)
	r.DELETE("/patients/:patient_id/related", patients.DeletePatientAndRelated)
	r.GET("/patients/:patient_id/appointments", appointments.GetPatientAppointments)
	r.POST("/appointments", appointments.CreateAppointment)
	r.GET("/appointments", appointments.GetAllAppointments)
	r.GET("/appointments/:appointment_id", appointments.GetAppointmentByID)
	r.PUT("/appointments/:appointment_id", appointments.UpdateAppointment)
	r.DELETE("/appointments/:appointment_id", appointments.DeleteAppointment)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestCreateAppointmentValidationMessages(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/patients", `{"name":"Ann"}`).Code)

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"patient", `{"patientId":"1","date":"2025-08-20","time":"14:30","reason":"x"}`, "patientId must be a positive integer"},
		{"date", `{"patientId":1,"date":"2025-8-20","time":"14:30","reason":"x"}`, "date must be in YYYY-MM-DD format"},
		{"time", `{"patientId":1,"date":"2025-08-20","time":"24:00","reason":"x"}`, "time must be in HH:MM format (24-hour)"},
		{"reason", `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":" "}`, "reason is required and must be a non-empty string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/appointments", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.msg, errorMessage(t, w))
		})
	}
}

func TestMalformedBody(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/appointments", `{"patientId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidBody, errorMessage(t, w))
}

func TestInvalidPathIDs(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/appointments/abc", "/appointments/0", "/appointments/-3"} {
		w := do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "invalid appointment ID", errorMessage(t, w), path)
	}

	w := do(r, http.MethodDelete, "/patients/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid patient ID", errorMessage(t, w))
}

func TestCreateAppointmentForUnknownPatient(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/appointments", `{"patientId":5,"date":"2025-08-20","time":"14:30","reason":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatientDeleteFlow(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/patients", `{"name":"Ann","contact":"555-0100"}`).Code)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/appointments", `{"patientId":1,"date":"2025-08-20","time":"14:30","reason":"x"}`).Code)

	w := do(r, http.MethodDelete, "/patients/1", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodGet, "/patients/1/appointments", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = do(r, http.MethodDelete, "/patients/1/related", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1 related appointment")

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/patients/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/patients/1/appointments", "").Code)
}

func TestUpdatePatient(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/patients", `{"name":"Ann","contact":"555-0100"}`).Code)

	w := do(r, http.MethodPut, "/patients/1", `{"name":"Ann Lee"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Patient updated successfully", body["message"])
	patient := body["patient"].(map[string]interface{})
	assert.Equal(t, "Ann Lee", patient["name"])
	assert.Equal(t, "555-0100", patient["contact"])

	w = do(r, http.MethodPut, "/patients/1", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
