package handlers

import (
	"CareSlot/middlewares"
	"CareSlot/services"
	"CareSlot/utils"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const msgInvalidBody = "invalid request body"

type PatientHandler struct {
	service *services.PatientService
}

func NewPatientHandler(service *services.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req utils.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, msgInvalidBody)
		return
	}
	patient, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{
		"message": "Patient created successfully",
		"patient": patient,
	}, http.StatusCreated)
}

func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	id, err := utils.ParseID(c.Param("patient_id"), "patient ID")
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	patient, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, patient, http.StatusOK)
}

func (h *PatientHandler) GetAllPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, patients, http.StatusOK)
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id, err := utils.ParseID(c.Param("patient_id"), "patient ID")
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	var req utils.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, msgInvalidBody)
		return
	}
	patient, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{"message": "Patient updated successfully", "patient": patient}, http.StatusOK)
}

func (h *PatientHandler) DeletePatient(c *gin.Context) {
	id, err := utils.ParseID(c.Param("patient_id"), "patient ID")
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{"message": "Patient deleted successfully"}, http.StatusOK)
}

func (h *PatientHandler) DeletePatientAndRelated(c *gin.Context) {
	id, err := utils.ParseID(c.Param("patient_id"), "patient ID")
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	removed, err := h.service.DeletePatientAndRelated(c.Request.Context(), id)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{
		"message": fmt.Sprintf("Patient and %d related appointment(s) deleted", removed),
	}, http.StatusOK)
}
