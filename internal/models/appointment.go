package models

import (
	"fmt"
	"time"

	"citamed/internal/domain"
)

// Appointment is a booked slot with a doctor. Appointments are never deleted;
// cancellation is a state, and only cancelled appointments free their slot.
type Appointment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PatientID   uint      `gorm:"not null;index" json:"patient_id"`
	DoctorID    uint      `gorm:"not null;index" json:"doctor_id"`
	Date        string    `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Time        string    `gorm:"size:8;not null" json:"time"`  // HH:MM:SS
	State       string    `gorm:"size:16;not null;index" json:"state"`
	Reason      string    `gorm:"type:text" json:"reason"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	// SlotKey is doctor|date|time while the appointment occupies its slot and
	// NULL once cancelled. The unique index makes double-booking impossible
	// regardless of isolation level.
	SlotKey   *string   `gorm:"size:96;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// SlotKeyFor builds the slot uniqueness key for a doctor/date/time triple.
func SlotKeyFor(doctorID uint, date, timeOfDay string) string {
	return fmt.Sprintf("%d|%s|%s", doctorID, date, timeOfDay)
}

func (a *Appointment) IsCancelled() bool { return a.State == domain.StateCancelled }
