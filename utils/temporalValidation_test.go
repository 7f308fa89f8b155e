package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2025-08-20", true},
		{"2025-13-99", true},
		{"0000-00-00", true},
		{"2025-8-20", false},
		{"25-08-20", false},
		{"2025/08/20", false},
		{"2025-08-20T10:00", false},
		{" 2025-08-20", false},
		{"2025-08-20\n", false},
		{"２０２５-08-20", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidDate(tt.in), "ValidDate(%q)", tt.in)
	}
}

func TestValidTime(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"00:00", true},
		{"09:05", true},
		{"14:30", true},
		{"23:59", true},
		{"24:00", false},
		{"19:60", false},
		{"9:05", false},
		{"09:5", false},
		{"14:30:00", false},
		{"2:30 PM", false},
		{"14:30Z", false},
		{"14:30\n", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidTime(tt.in), "ValidTime(%q)", tt.in)
	}
}
