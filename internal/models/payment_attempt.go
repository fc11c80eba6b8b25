package models

import (
	"fmt"
	"time"
)

// PaymentAttempt is one row in the payment ledger. Attempts are immutable once
// recorded; a retry is a new attempt, never an update of an old one.
type PaymentAttempt struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AppointmentID     uint      `gorm:"not null;index" json:"appointment_id"`
	AmountCents       int64     `gorm:"not null" json:"amount_cents"`
	Method            string    `gorm:"size:32;not null" json:"method"`
	Outcome           string    `gorm:"size:16;not null;index" json:"outcome"` // completed | failed
	SettlementRef     string    `gorm:"size:64;uniqueIndex;not null" json:"settlement_ref"`
	AuthorizationCode string    `gorm:"size:32" json:"authorization_code,omitempty"`
	FeeCents          int64     `json:"fee_cents"`
	DeclineReason     string    `gorm:"size:64" json:"decline_reason,omitempty"`
	ProcessedAt       time.Time `json:"processed_at"`
	// CompletionKey is apt_<appointment_id> on completed attempts and NULL on
	// failed ones. The unique index guarantees at most one completed payment
	// per appointment even under concurrent submissions.
	CompletionKey *string   `gorm:"size:32;uniqueIndex" json:"-"`
	CreatedAt     time.Time `json:"created_at"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}

// CompletionKeyFor builds the at-most-one-completed-payment key.
func CompletionKeyFor(appointmentID uint) string {
	return fmt.Sprintf("apt_%d", appointmentID)
}
