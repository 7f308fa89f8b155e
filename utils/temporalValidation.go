package utils

import "regexp"

var (
	dateRegex = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	timeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// ValidDate reports whether s has the YYYY-MM-DD shape. It is a syntax check
// only: 2025-13-99 passes.
func ValidDate(s string) bool {
	return dateRegex.MatchString(s)
}

// ValidTime reports whether s is a 24-hour HH:MM clock reading without
// seconds or zone.
func ValidTime(s string) bool {
	return timeRegex.MatchString(s)
}
