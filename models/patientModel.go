package models

import (
	"time"
)

// Patient model
type Patient struct {
	ID           uint          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name         string        `gorm:"column:name;not null" json:"name"`
	Contact      *string       `gorm:"column:contact" json:"contact"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	Appointments []Appointment `gorm:"foreignKey:PatientID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

// Appointment model. The composite unique index over (patient_id,
// appointment_date, appointment_time) is the storage-side guard for slot
// exclusivity.
type Appointment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PatientID uint      `gorm:"column:patient_id;not null;index;uniqueIndex:idx_appointment_patient_slot,priority:1" json:"patientId"`
	Date      string    `gorm:"column:appointment_date;type:varchar(10);not null;uniqueIndex:idx_appointment_patient_slot,priority:2" json:"date"`
	Time      string    `gorm:"column:appointment_time;type:varchar(5);not null;uniqueIndex:idx_appointment_patient_slot,priority:3" json:"time"`
	Reason    string    `gorm:"column:reason;not null" json:"reason"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// Slot is the (date, time) pair an appointment occupies for its patient.
type Slot struct {
	Date string
	Time string
}

func (a Appointment) Slot() Slot {
	return Slot{Date: a.Date, Time: a.Time}
}
