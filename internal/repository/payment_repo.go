package repository

import (
	"errors"

	"citamed/internal/domain"
	"citamed/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository is the append-only ledger of payment attempts.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// HasCompleted reports whether the appointment already has a completed attempt.
func (r *PaymentRepository) HasCompleted(appointmentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.PaymentAttempt{}).
		Where("appointment_id = ? AND outcome = ?", appointmentID, domain.OutcomeCompleted).
		Count(&count).Error
	return count > 0, err
}

// RecordFailed appends a declined attempt. The appointment state is untouched.
func (r *PaymentRepository) RecordFailed(a *models.PaymentAttempt) error {
	return r.db.Create(a).Error
}

// RecordCompleted appends a completed attempt and settles the appointment
// (pending -> paid) in one transaction. Either both happen or neither does: a
// completed attempt without the matching state transition is never visible.
// The completion_key unique index rejects a second completed attempt even if
// two submissions race past the HasCompleted check.
func (r *PaymentRepository) RecordCompleted(a *models.PaymentAttempt) error {
	key := models.CompletionKeyFor(a.AppointmentID)
	a.CompletionKey = &key
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrAlreadyPaid
			}
			return err
		}
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND state = ?", a.AppointmentID, domain.StatePending).
			Update("state", domain.StatePaid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The appointment left pending while the charge was in flight
			// (e.g. a cancellation landed); roll the attempt back too.
			return domain.ErrInvalidState
		}
		return nil
	})
}

// ListByAppointment returns the appointment's attempts, most recent first.
func (r *PaymentRepository) ListByAppointment(appointmentID uint) ([]models.PaymentAttempt, error) {
	var list []models.PaymentAttempt
	err := r.db.Where("appointment_id = ?", appointmentID).
		Order("processed_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// ListByPatient returns every attempt across the patient's appointments,
// most recent first.
func (r *PaymentRepository) ListByPatient(patientID uint) ([]models.PaymentAttempt, error) {
	var list []models.PaymentAttempt
	err := r.db.
		Joins("JOIN appointments ON appointments.id = payment_attempts.appointment_id").
		Where("appointments.patient_id = ?", patientID).
		Order("payment_attempts.processed_at DESC, payment_attempts.id DESC").
		Find(&list).Error
	return list, err
}
