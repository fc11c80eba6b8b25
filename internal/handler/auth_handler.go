package handler

import (
	"net/http"

	"citamed/internal/middleware"
	"citamed/internal/models"
	"citamed/internal/repository"
	"citamed/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc       *service.AuthService
	auditRepo *repository.AuditLogRepository
}

func NewAuthHandler(svc *service.AuthService, auditRepo *repository.AuditLogRepository) *AuthHandler {
	return &AuthHandler{svc: svc, auditRepo: auditRepo}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"omitempty,min=8,max=20"`
	Role      string `json:"role" binding:"required,oneof=patient doctor"`
	Specialty string `json:"specialty" binding:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Register(service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
		Specialty: req.Specialty,
	})
	if err != nil {
		if err == service.ErrEmailExists {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	h.audit(u.ID, "register", c)
	c.JSON(http.StatusCreated, gin.H{"user": u, "access_token": access, "refresh_token": refresh})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, access, refresh, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCreds {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	h.audit(u.ID, "login", c)
	c.JSON(http.StatusOK, gin.H{"user": u, "access_token": access, "refresh_token": refresh})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	access, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// Me returns the authenticated user's audit trail tail alongside identity
// claims; handy for debugging sessions.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	email, _ := c.Get("email")
	role, _ := c.Get("role")
	var recent []models.AuditLog
	if h.auditRepo != nil {
		recent, _ = h.auditRepo.ListByUser(userID, 10)
	}
	c.JSON(http.StatusOK, gin.H{"id": userID, "email": email, "role": role, "recent_activity": recent})
}

func (h *AuthHandler) audit(userID uint, action string, c *gin.Context) {
	if h.auditRepo == nil {
		return
	}
	uid := userID
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:   &uid,
		Action:   action,
		Resource: "user",
		IP:       c.ClientIP(),
	})
}
