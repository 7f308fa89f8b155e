package models

import "github.com/pkg/errors"

// Domain errors. Handlers map these onto HTTP status codes; anything else
// coming out of a service is treated as an internal failure.
var (
	ErrPatientNotFound        = errors.New("patient not found")
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrSlotConflict           = errors.New("patient already has an appointment at this date and time")
	ErrPatientHasAppointments = errors.New("patient has scheduled appointments")
)
