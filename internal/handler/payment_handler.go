package handler

import (
	"net/http"

	"citamed/config"
	"citamed/internal/domain"
	"citamed/internal/middleware"
	"citamed/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	svc *service.PaymentService
	cfg *config.GatewayConfig
}

func NewPaymentHandler(svc *service.PaymentService, cfg *config.GatewayConfig) *PaymentHandler {
	return &PaymentHandler{svc: svc, cfg: cfg}
}

type submitPaymentRequest struct {
	AppointmentID uint   `json:"appointment_id" binding:"required"`
	Method        string `json:"method" binding:"required"`
	// Optional echo of the amount the patient saw; rejected on mismatch.
	AmountCents int64 `json:"amount_cents"`
}

// Submit charges the appointment through the sandbox gateway. A declined
// charge is a successful call: the response carries outcome=failed.
func (h *PaymentHandler) Submit(c *gin.Context) {
	var req submitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := middleware.GetActor(c)
	attempt, err := h.svc.SubmitPayment(c.Request.Context(), actor, req.AppointmentID, req.Method, req.AmountCents)
	if err != nil {
		respondError(c, err)
		return
	}
	if attempt.Outcome == domain.OutcomeFailed {
		c.JSON(http.StatusOK, gin.H{
			"message": "payment declined by gateway",
			"attempt": attempt,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "payment processed",
		"attempt": attempt,
	})
}

// Status returns the ledger for one appointment, most recent attempt first.
func (h *PaymentHandler) Status(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	st, err := h.svc.Status(middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// History returns every payment attempt across the patient's appointments.
func (h *PaymentHandler) History(c *gin.Context) {
	attempts, err := h.svc.History(middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

// SandboxInfo documents the simulated gateway for client developers.
func (h *PaymentHandler) SandboxInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"environment":       "sandbox",
		"methods":           domain.PaymentMethods,
		"fee_percent":       h.cfg.FeePercent,
		"decline_rate":      h.cfg.DeclineRate,
		"processing_time": "1-3 seconds",
		"test_cards": gin.H{
			"visa_approved":       "4111111111111111",
			"visa_declined":       "4111111111110000",
			"mastercard_approved": "5555555555554444",
		},
	})
}
