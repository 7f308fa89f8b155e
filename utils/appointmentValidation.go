package utils

import (
	"CareSlot/models"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field-specific messages returned to clients.
const (
	MsgPatientRef = "patientId must be a positive integer"
	MsgDate       = "date must be in YYYY-MM-DD format"
	MsgTime       = "time must be in HH:MM format (24-hour)"
	MsgReason     = "reason is required and must be a non-empty string"
	MsgReasonType = "reason must be a string"
)

// CreateAppointmentRequest is the wire shape of a create call. Fields stay
// untyped until parsed so that a value of the wrong JSON type is reported
// against its field instead of failing the whole body.
type CreateAppointmentRequest struct {
	PatientID interface{} `json:"patientId"`
	Date      interface{} `json:"date"`
	Time      interface{} `json:"time"`
	Reason    interface{} `json:"reason"`
}

// NewAppointment is a create request that passed every syntax check.
type NewAppointment struct {
	PatientID uint
	Date      string
	Time      string
	Reason    string
}

// ParseCreateAppointment validates patientId, date, time and reason, in that
// order, and returns the first failure as a *FieldError.
func ParseCreateAppointment(req CreateAppointmentRequest) (NewAppointment, error) {
	err := firstInvalid(
		fieldCheck{"patientId", req.PatientID, []validation.Rule{validation.Required.Error(MsgPatientRef), positiveInteger(MsgPatientRef)}},
		fieldCheck{"date", req.Date, []validation.Rule{validation.Required.Error(MsgDate), stringMatching(ValidDate, MsgDate)}},
		fieldCheck{"time", req.Time, []validation.Rule{validation.Required.Error(MsgTime), stringMatching(ValidTime, MsgTime)}},
		fieldCheck{"reason", req.Reason, []validation.Rule{validation.Required.Error(MsgReason), nonBlankString(MsgReason)}},
	)
	if err != nil {
		return NewAppointment{}, err
	}

	patientID, _ := toID(req.PatientID)
	return NewAppointment{
		PatientID: patientID,
		Date:      req.Date.(string),
		Time:      req.Time.(string),
		Reason:    strings.TrimSpace(req.Reason.(string)),
	}, nil
}

// UpdateAppointmentRequest carries the optional fields of an update. A nil
// field was not submitted. The patient reference is immutable and is not
// accepted here.
type UpdateAppointmentRequest struct {
	Date   interface{} `json:"date"`
	Time   interface{} `json:"time"`
	Reason interface{} `json:"reason"`
}

// Empty reports whether no field was submitted.
func (r UpdateAppointmentRequest) Empty() bool {
	return r.Date == nil && r.Time == nil && r.Reason == nil
}

// MergeAppointmentUpdate validates the submitted fields and overlays them on
// current. Absent fields keep their current value; a blank reason also keeps
// the current reason.
func MergeAppointmentUpdate(current models.Appointment, req UpdateAppointmentRequest) (models.Appointment, error) {
	err := firstInvalid(
		fieldCheck{"date", req.Date, []validation.Rule{validation.When(req.Date != nil, stringMatching(ValidDate, MsgDate))}},
		fieldCheck{"time", req.Time, []validation.Rule{validation.When(req.Time != nil, stringMatching(ValidTime, MsgTime))}},
		fieldCheck{"reason", req.Reason, []validation.Rule{optionalString(MsgReasonType)}},
	)
	if err != nil {
		return models.Appointment{}, err
	}

	merged := current
	if date, ok := req.Date.(string); ok {
		merged.Date = date
	}
	if tm, ok := req.Time.(string); ok {
		merged.Time = tm
	}
	if reason, ok := req.Reason.(string); ok {
		if trimmed := strings.TrimSpace(reason); trimmed != "" {
			merged.Reason = trimmed
		}
	}
	return merged, nil
}
