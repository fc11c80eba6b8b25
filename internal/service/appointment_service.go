package service

import (
	"errors"
	"time"

	"citamed/config"
	"citamed/internal/domain"
	"citamed/internal/models"

	"gorm.io/gorm"
)

// AppointmentStore is the persistence surface the lifecycle manager needs.
type AppointmentStore interface {
	Create(a *models.Appointment) error
	GetByID(id uint) (*models.Appointment, error)
	SlotTaken(doctorID uint, date, timeOfDay string, excludeID uint) (bool, error)
	ListByPatient(patientID uint) ([]models.Appointment, error)
	ListByDoctor(doctorID uint, date string) ([]models.Appointment, error)
	UpdateState(id uint, fromState, toState string) (bool, error)
	Reschedule(id uint, date, timeOfDay, slotKey string) (bool, error)
	CountByPatientAndState(patientID uint, state string) (int64, error)
}

// DoctorDirectory resolves doctor identities owned by the auth layer.
type DoctorDirectory interface {
	GetDoctor(id uint) (*models.User, error)
	ListDoctors() ([]models.User, error)
}

// Notifier pushes appointment events to the affected user. May be nil.
type Notifier interface {
	AppointmentBooked(doctorID uint, a *models.Appointment)
	AppointmentPaid(doctorID uint, a *models.Appointment)
	AppointmentReviewed(patientID uint, a *models.Appointment, action string)
	AppointmentCancelled(userID uint, a *models.Appointment)
}

type transitionKey struct {
	from, action string
}

// AppointmentService owns the appointment state machine. Every legal move is
// an entry in the transition table; anything else maps to a typed error.
type AppointmentService struct {
	cfg         config.BookingConfig
	appts       AppointmentStore
	doctors     DoctorDirectory
	notif       Notifier
	transitions map[transitionKey]string
}

func NewAppointmentService(cfg config.BookingConfig, appts AppointmentStore, doctors DoctorDirectory, notif Notifier) *AppointmentService {
	t := map[transitionKey]string{
		{domain.StatePaid, domain.ActionConfirm}:   domain.StateConfirmed,
		{domain.StatePaid, domain.ActionReject}:    domain.StateCancelled,
		{domain.StatePending, domain.ActionCancel}: domain.StateCancelled,
		{domain.StatePaid, domain.ActionCancel}:    domain.StateCancelled,
	}
	if cfg.AllowCancelConfirmed {
		t[transitionKey{domain.StateConfirmed, domain.ActionCancel}] = domain.StateCancelled
	}
	return &AppointmentService{cfg: cfg, appts: appts, doctors: doctors, notif: notif, transitions: t}
}

type CreateAppointmentInput struct {
	DoctorID    uint
	Date        string // YYYY-MM-DD
	Time        string // HH:MM:SS
	Reason      string
	AmountCents *int64 // nil -> configured default
}

// Create books a pending appointment for the acting patient.
func (s *AppointmentService) Create(actor domain.Actor, in CreateAppointmentInput) (*models.Appointment, error) {
	if !actor.IsPatient() {
		return nil, domain.ErrNotOwner
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, domain.ErrInvalidDate
	}
	minutes, err := parseTimeOfDay(in.Time)
	if err != nil {
		return nil, domain.ErrInvalidTime
	}
	if !inWorkingHours(minutes) {
		return nil, domain.ErrInvalidWindow
	}
	amount := s.cfg.DefaultAmountCents
	if in.AmountCents != nil {
		if *in.AmountCents < 0 {
			return nil, domain.ErrInvalidAmount
		}
		amount = *in.AmountCents
	}
	if _, err := s.doctors.GetDoctor(in.DoctorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidDoctor
		}
		return nil, err
	}
	// Fast-path conflict check; the slot_key unique index is the backstop
	// when two bookings race past it.
	taken, err := s.appts.SlotTaken(in.DoctorID, in.Date, in.Time, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlotConflict
	}
	key := models.SlotKeyFor(in.DoctorID, in.Date, in.Time)
	a := &models.Appointment{
		PatientID:   actor.ID,
		DoctorID:    in.DoctorID,
		Date:        in.Date,
		Time:        in.Time,
		State:       domain.StatePending,
		Reason:      in.Reason,
		AmountCents: amount,
		SlotKey:     &key,
	}
	if err := s.appts.Create(a); err != nil {
		return nil, err
	}
	if s.notif != nil {
		s.notif.AppointmentBooked(a.DoctorID, a)
	}
	return a, nil
}

// IsAvailable reports whether the slot is free of non-cancelled appointments.
// excludeID lets reschedule checks ignore the appointment being moved.
func (s *AppointmentService) IsAvailable(doctorID uint, date, timeOfDay string, excludeID uint) (bool, error) {
	taken, err := s.appts.SlotTaken(doctorID, date, timeOfDay, excludeID)
	return !taken, err
}

// Get returns the appointment when the actor is its patient or doctor.
func (s *AppointmentService) Get(actor domain.Actor, id uint) (*models.Appointment, error) {
	a, err := s.appts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.owns(actor, a) {
		return nil, domain.ErrNotOwner
	}
	return a, nil
}

// List returns the actor's appointments: full history most recent first for
// patients, day-view ascending (optionally filtered by date) for doctors.
func (s *AppointmentService) List(actor domain.Actor, date string) ([]models.Appointment, error) {
	if actor.IsDoctor() {
		return s.appts.ListByDoctor(actor.ID, date)
	}
	return s.appts.ListByPatient(actor.ID)
}

func (s *AppointmentService) Doctors() ([]models.User, error) {
	return s.doctors.ListDoctors()
}

// Stats returns the acting patient's appointment counts per state.
func (s *AppointmentService) Stats(actor domain.Actor) (map[string]int64, error) {
	if !actor.IsPatient() {
		return nil, domain.ErrNotOwner
	}
	out := make(map[string]int64, 4)
	for _, state := range []string{domain.StatePending, domain.StatePaid, domain.StateConfirmed, domain.StateCancelled} {
		n, err := s.appts.CountByPatientAndState(actor.ID, state)
		if err != nil {
			return nil, err
		}
		out[state] = n
	}
	return out, nil
}

// Transition applies confirm, reject or cancel on behalf of the actor.
func (s *AppointmentService) Transition(actor domain.Actor, id uint, action string) (*models.Appointment, error) {
	a, err := s.appts.GetByID(id)
	if err != nil {
		return nil, err
	}
	switch action {
	case domain.ActionConfirm, domain.ActionReject:
		if !actor.IsDoctor() || a.DoctorID != actor.ID {
			return nil, domain.ErrNotOwner
		}
	case domain.ActionCancel:
		if !s.owns(actor, a) {
			return nil, domain.ErrNotOwner
		}
	default:
		return nil, domain.ErrInvalidState
	}
	to, ok := s.transitions[transitionKey{a.State, action}]
	if !ok {
		return nil, transitionError(a.State, action)
	}
	moved, err := s.appts.UpdateState(a.ID, a.State, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Lost a race with a concurrent transition on the same appointment.
		return nil, domain.ErrInvalidState
	}
	a.State = to
	if a.IsCancelled() {
		a.SlotKey = nil
	}
	s.notifyTransition(actor, a, action)
	return a, nil
}

type RescheduleInput struct {
	Date string
	Time string
}

// Reschedule moves a pending appointment owned by the acting patient to a new
// slot, revalidating the working-hours window and availability.
func (s *AppointmentService) Reschedule(actor domain.Actor, id uint, in RescheduleInput) (*models.Appointment, error) {
	a, err := s.appts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsPatient() || a.PatientID != actor.ID {
		return nil, domain.ErrNotOwner
	}
	if a.State != domain.StatePending {
		return nil, domain.ErrInvalidState
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, domain.ErrInvalidDate
	}
	minutes, err := parseTimeOfDay(in.Time)
	if err != nil {
		return nil, domain.ErrInvalidTime
	}
	if !inWorkingHours(minutes) {
		return nil, domain.ErrInvalidWindow
	}
	taken, err := s.appts.SlotTaken(a.DoctorID, in.Date, in.Time, a.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlotConflict
	}
	key := models.SlotKeyFor(a.DoctorID, in.Date, in.Time)
	moved, err := s.appts.Reschedule(a.ID, in.Date, in.Time, key)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, domain.ErrInvalidState
	}
	a.Date, a.Time, a.SlotKey = in.Date, in.Time, &key
	return a, nil
}

func (s *AppointmentService) owns(actor domain.Actor, a *models.Appointment) bool {
	switch actor.Role {
	case domain.RolePatient:
		return a.PatientID == actor.ID
	case domain.RoleDoctor:
		return a.DoctorID == actor.ID
	}
	return false
}

func (s *AppointmentService) notifyTransition(actor domain.Actor, a *models.Appointment, action string) {
	if s.notif == nil {
		return
	}
	switch action {
	case domain.ActionConfirm, domain.ActionReject:
		s.notif.AppointmentReviewed(a.PatientID, a, action)
	case domain.ActionCancel:
		// Tell the other party.
		if actor.IsPatient() {
			s.notif.AppointmentCancelled(a.DoctorID, a)
		} else {
			s.notif.AppointmentCancelled(a.PatientID, a)
		}
	}
}

// transitionError maps an illegal (state, action) pair to its typed error.
func transitionError(state, action string) error {
	if action == domain.ActionCancel {
		if state == domain.StateCancelled {
			return domain.ErrAlreadyCancelled
		}
		return domain.ErrInvalidState
	}
	// confirm/reject are only legal from paid
	if state == domain.StatePending {
		return domain.ErrNotPaid
	}
	return domain.ErrInvalidState
}

// parseTimeOfDay returns minutes since midnight for an HH:MM:SS value.
func parseTimeOfDay(v string) (int, error) {
	t, err := time.Parse("15:04:05", v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Working hours: 07:00-12:00 and 14:00-18:00, upper bounds exclusive.
func inWorkingHours(minutes int) bool {
	return (minutes >= 7*60 && minutes < 12*60) || (minutes >= 14*60 && minutes < 18*60)
}
