package handlers

import (
	"CareSlot/middlewares"
	"CareSlot/services"
	"CareSlot/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	service *services.AppointmentService
}

func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req utils.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, msgInvalidBody)
		return
	}
	appointment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{
		"message":     "Appointment created successfully",
		"appointment": appointment,
	}, http.StatusCreated)
}

func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id, err := utils.ParseID(c.Param("appointment_id"), "appointment ID")
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	appointment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, appointment, http.StatusOK)
}

func (h *AppointmentHandler) GetAllAppointments(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, appointments, http.StatusOK)
}

func (h *AppointmentHandler) GetPatientAppointments(c *gin.Context) {
	patientID, err := utils.ParseID(c.Param("patient_id"), "patient ID")
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	appointments, err := h.service.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, appointments, http.StatusOK)
}

func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	id, err := utils.ParseID(c.Param("appointment_id"), "appointment ID")
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	var req utils.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, msgInvalidBody)
		return
	}
	appointment, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{
		"message":     "Appointment updated successfully",
		"appointment": appointment,
	}, http.StatusOK)
}

func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	id, err := utils.ParseID(c.Param("appointment_id"), "appointment ID")
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{"message": "Appointment deleted successfully"}, http.StatusOK)
}
