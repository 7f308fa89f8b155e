package controllers

import (
	"CareSlot/handlers"

	"github.com/gin-gonic/gin"
)

func SetupPatientRoutes(router *gin.Engine, patientHandler *handlers.PatientHandler, appointmentHandler *handlers.AppointmentHandler) {
	router.POST("/patients", patientHandler.CreatePatient)
	router.GET("/patients/:patient_id", patientHandler.GetPatientByID)
	router.PUT("/patients/:patient_id", patientHandler.UpdatePatient)
	router.DELETE("/patients/:patient_id", patientHandler.DeletePatient)
	router.DELETE("/patients/:patient_id/related", patientHandler.DeletePatientAndRelated)
	router.GET("/patients", patientHandler.GetAllPatients)

	router.GET("/patients/:patient_id/appointments", appointmentHandler.GetPatientAppointments)

	router.POST("/appointments", appointmentHandler.CreateAppointment)
	router.GET("/appointments/:appointment_id", appointmentHandler.GetAppointmentByID)
	router.PUT("/appointments/:appointment_id", appointmentHandler.UpdateAppointment)
	router.DELETE("/appointments/:appointment_id", appointmentHandler.DeleteAppointment)
	router.GET("/appointments", appointmentHandler.GetAllAppointments)
}
