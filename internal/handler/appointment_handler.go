package handler

import (
	"net/http"
	"strconv"

	"citamed/internal/domain"
	"citamed/internal/middleware"
	"citamed/internal/models"
	"citamed/internal/repository"
	"citamed/internal/service"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	svc       *service.AppointmentService
	auditRepo *repository.AuditLogRepository
}

func NewAppointmentHandler(svc *service.AppointmentService, auditRepo *repository.AuditLogRepository) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, auditRepo: auditRepo}
}

type createAppointmentRequest struct {
	DoctorID    uint   `json:"doctor_id" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:MM:SS
	Reason      string `json:"reason" binding:"omitempty,max=2000"`
	AmountCents *int64 `json:"amount_cents"`
}

// Create books a new appointment (patient only).
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := middleware.GetActor(c)
	a, err := h.svc.Create(actor, service.CreateAppointmentInput{
		DoctorID:    req.DoctorID,
		Date:        req.Date,
		Time:        req.Time,
		Reason:      req.Reason,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(actor.ID, "appointment_created", a.ID, c)
	c.JSON(http.StatusCreated, gin.H{"appointment": a})
}

// List returns the caller's appointments: history for patients, day view for
// doctors (optional ?date=YYYY-MM-DD).
func (h *AppointmentHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	list, err := h.svc.List(actor, c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	a, err := h.svc.Get(middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": a})
}

type reviewRequest struct {
	Action string `json:"action" binding:"required,oneof=confirm reject"`
}

// Review lets the owning doctor confirm or reject a paid appointment.
func (h *AppointmentHandler) Review(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := middleware.GetActor(c)
	a, err := h.svc.Transition(actor, id, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(actor.ID, "appointment_"+req.Action, a.ID, c)
	c.JSON(http.StatusOK, gin.H{"appointment": a})
}

// Cancel cancels the appointment on behalf of its patient or doctor.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	actor := middleware.GetActor(c)
	a, err := h.svc.Transition(actor, id, domain.ActionCancel)
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(actor.ID, "appointment_cancelled", a.ID, c)
	c.JSON(http.StatusOK, gin.H{"appointment": a})
}

type rescheduleRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// Reschedule moves a pending appointment to another slot (patient only).
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := middleware.GetActor(c)
	a, err := h.svc.Reschedule(actor, id, service.RescheduleInput{Date: req.Date, Time: req.Time})
	if err != nil {
		respondError(c, err)
		return
	}
	h.audit(actor.ID, "appointment_rescheduled", a.ID, c)
	c.JSON(http.StatusOK, gin.H{"appointment": a})
}

// Availability reports whether a doctor's slot is free for booking.
func (h *AppointmentHandler) Availability(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	date, timeOfDay := c.Query("date"), c.Query("time")
	if date == "" || timeOfDay == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and time query parameters are required"})
		return
	}
	free, err := h.svc.IsAvailable(id, date, timeOfDay, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctor_id": id, "date": date, "time": timeOfDay, "available": free})
}

// Stats returns the caller's appointment counts per state (patient only).
func (h *AppointmentHandler) Stats(c *gin.Context) {
	counts, err := h.svc.Stats(middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

type doctorView struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// ListDoctors returns the bookable doctors.
func (h *AppointmentHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.Doctors()
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]doctorView, 0, len(doctors))
	for i := range doctors {
		out = append(out, doctorView{ID: doctors[i].ID, Name: doctors[i].FullName(), Specialty: doctors[i].Specialty})
	}
	c.JSON(http.StatusOK, gin.H{"doctors": out})
}

func (h *AppointmentHandler) audit(userID uint, action string, appointmentID uint, c *gin.Context) {
	if h.auditRepo == nil {
		return
	}
	uid := userID
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &uid,
		Action:     action,
		Resource:   "appointment",
		ResourceID: strconv.FormatUint(uint64(appointmentID), 10),
		IP:         c.ClientIP(),
	})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, err
	}
	return uint(id), nil
}
