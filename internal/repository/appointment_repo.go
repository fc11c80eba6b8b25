package repository

import (
	"errors"

	"citamed/internal/domain"
	"citamed/internal/models"

	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create inserts a new appointment. The unique index on slot_key turns a
// concurrent booking of the same slot into a duplicate-key error, which is
// surfaced as a slot conflict; the check-then-insert race cannot produce two
// active appointments for one slot.
func (r *AppointmentRepository) Create(a *models.Appointment) error {
	err := r.db.Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSlotConflict
	}
	return err
}

func (r *AppointmentRepository) GetByID(id uint) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.Preload("Doctor").Preload("Patient").First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SlotTaken reports whether a non-cancelled appointment occupies the slot.
// A non-zero excludeID leaves that appointment out, for reschedule checks.
func (r *AppointmentRepository) SlotTaken(doctorID uint, date, timeOfDay string, excludeID uint) (bool, error) {
	q := r.db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ? AND state <> ?",
			doctorID, date, timeOfDay, domain.StateCancelled)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByPatient returns the patient's full history, most recent first.
func (r *AppointmentRepository) ListByPatient(patientID uint) ([]models.Appointment, error) {
	var list []models.Appointment
	err := r.db.Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("date DESC, time DESC").
		Find(&list).Error
	return list, err
}

// ListByDoctor returns the doctor's appointments in day-view order, filtered
// to one date when date is non-empty.
func (r *AppointmentRepository) ListByDoctor(doctorID uint, date string) ([]models.Appointment, error) {
	q := r.db.Preload("Patient").Where("doctor_id = ?", doctorID)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	var list []models.Appointment
	err := q.Order("date ASC, time ASC").Find(&list).Error
	return list, err
}

// UpdateState moves the appointment from exactly fromState to toState,
// freeing the slot when the target state is cancelled. Returns false when the
// row was no longer in fromState, in which case nothing changed.
func (r *AppointmentRepository) UpdateState(id uint, fromState, toState string) (bool, error) {
	updates := map[string]interface{}{"state": toState}
	if toState == domain.StateCancelled {
		updates["slot_key"] = nil
	}
	res := r.db.Model(&models.Appointment{}).
		Where("id = ? AND state = ?", id, fromState).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Reschedule moves a pending appointment to a new date/time, claiming the new
// slot through the slot_key unique index. Returns false when the appointment
// left the pending state in the meantime.
func (r *AppointmentRepository) Reschedule(id uint, date, timeOfDay, slotKey string) (bool, error) {
	res := r.db.Model(&models.Appointment{}).
		Where("id = ? AND state = ?", id, domain.StatePending).
		Updates(map[string]interface{}{"date": date, "time": timeOfDay, "slot_key": slotKey})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return false, domain.ErrSlotConflict
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountByPatientAndState backs the patient stats endpoint.
func (r *AppointmentRepository) CountByPatientAndState(patientID uint, state string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Appointment{}).
		Where("patient_id = ? AND state = ?", patientID, state).
		Count(&count).Error
	return count, err
}
