package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

// FieldError is a request validation failure tied to one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// fieldCheck pairs a field with its rules. Checks run in declaration order
// and stop at the first failure, so the reported field is deterministic.
type fieldCheck struct {
	field string
	value interface{}
	rules []validation.Rule
}

func firstInvalid(checks ...fieldCheck) error {
	for _, check := range checks {
		if err := validation.Validate(check.value, check.rules...); err != nil {
			return &FieldError{Field: check.field, Message: err.Error()}
		}
	}
	return nil
}

// stringMatching accepts only string values for which match returns true.
func stringMatching(match func(string) bool, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok || !match(s) {
			return errors.New(message)
		}
		return nil
	})
}

// nonBlankString accepts strings that still have content after trimming.
func nonBlankString(message string) validation.Rule {
	return stringMatching(func(s string) bool { return strings.TrimSpace(s) != "" }, message)
}

// optionalString accepts nil or any string.
func optionalString(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if value == nil {
			return nil
		}
		if _, ok := value.(string); !ok {
			return errors.New(message)
		}
		return nil
	})
}

// positiveInteger accepts JSON numbers holding a whole value in [1, MaxInt32].
func positiveInteger(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if _, ok := toID(value); !ok {
			return errors.New(message)
		}
		return nil
	})
}

func toID(value interface{}) (uint, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case int:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return uint(f), true
}

// ParseID parses a path identity, which must be a positive decimal integer.
func ParseID(raw, field string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 31)
	if err != nil || id == 0 {
		return 0, &FieldError{Field: field, Message: "invalid " + field}
	}
	return uint(id), nil
}
