package utils

import (
	"CareSlot/models"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MsgName    = "name is required and must be a non-empty string"
	MsgContact = "contact must be a string"
)

type CreatePatientRequest struct {
	Name    interface{} `json:"name"`
	Contact interface{} `json:"contact"`
}

type NewPatient struct {
	Name    string
	Contact *string
}

// ParseCreatePatient requires a non-blank name; contact is optional.
func ParseCreatePatient(req CreatePatientRequest) (NewPatient, error) {
	err := firstInvalid(
		fieldCheck{"name", req.Name, []validation.Rule{validation.Required.Error(MsgName), nonBlankString(MsgName)}},
		fieldCheck{"contact", req.Contact, []validation.Rule{optionalString(MsgContact)}},
	)
	if err != nil {
		return NewPatient{}, err
	}
	return NewPatient{
		Name:    strings.TrimSpace(req.Name.(string)),
		Contact: normalizeContact(req.Contact),
	}, nil
}

type UpdatePatientRequest struct {
	Name    interface{} `json:"name"`
	Contact interface{} `json:"contact"`
}

// MergePatientUpdate overlays submitted fields on current. A submitted name
// must be non-blank; an empty contact string clears the contact.
func MergePatientUpdate(current models.Patient, req UpdatePatientRequest) (models.Patient, error) {
	err := firstInvalid(
		fieldCheck{"name", req.Name, []validation.Rule{validation.When(req.Name != nil, nonBlankString(MsgName))}},
		fieldCheck{"contact", req.Contact, []validation.Rule{optionalString(MsgContact)}},
	)
	if err != nil {
		return models.Patient{}, err
	}

	merged := current
	if name, ok := req.Name.(string); ok {
		merged.Name = strings.TrimSpace(name)
	}
	if req.Contact != nil {
		merged.Contact = normalizeContact(req.Contact)
	}
	return merged, nil
}

func normalizeContact(value interface{}) *string {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
