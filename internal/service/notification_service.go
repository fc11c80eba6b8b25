package service

import (
	"encoding/json"
	"fmt"

	"citamed/internal/models"
	"citamed/internal/repository"
)

// EventPusher delivers a payload to every live connection of one user.
type EventPusher interface {
	BroadcastToUser(userID uint, payload interface{})
}

// NotificationService persists notifications and mirrors them to the user's
// WebSocket connections when any are open.
type NotificationService struct {
	repo *repository.NotificationRepository
	hub  EventPusher
}

func NewNotificationService(repo *repository.NotificationRepository, hub EventPusher) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	// Best effort: a lost notification must not fail the operation that
	// produced it.
	_ = s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, map[string]interface{}{
			"type":  notifType,
			"title": title,
			"body":  body,
			"data":  data,
		})
	}
}

func (s *NotificationService) AppointmentBooked(doctorID uint, a *models.Appointment) {
	s.notify(doctorID, "APPOINTMENT_BOOKED", "New appointment request",
		fmt.Sprintf("A patient booked %s at %s", a.Date, a.Time),
		map[string]interface{}{"appointment_id": a.ID})
}

func (s *NotificationService) AppointmentPaid(doctorID uint, a *models.Appointment) {
	s.notify(doctorID, "APPOINTMENT_PAID", "Appointment paid",
		fmt.Sprintf("The appointment on %s at %s is paid and awaits your review", a.Date, a.Time),
		map[string]interface{}{"appointment_id": a.ID})
}

func (s *NotificationService) AppointmentReviewed(patientID uint, a *models.Appointment, action string) {
	title := "Appointment confirmed"
	if action != "confirm" {
		title = "Appointment rejected"
	}
	s.notify(patientID, "APPOINTMENT_REVIEWED", title,
		fmt.Sprintf("Your appointment on %s at %s was %sed", a.Date, a.Time, action),
		map[string]interface{}{"appointment_id": a.ID, "state": a.State})
}

func (s *NotificationService) AppointmentCancelled(userID uint, a *models.Appointment) {
	s.notify(userID, "APPOINTMENT_CANCELLED", "Appointment cancelled",
		fmt.Sprintf("The appointment on %s at %s was cancelled", a.Date, a.Time),
		map[string]interface{}{"appointment_id": a.ID})
}
