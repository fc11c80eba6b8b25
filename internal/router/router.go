package router

import (
	"time"

	"citamed/config"
	"citamed/internal/domain"
	"citamed/internal/handler"
	"citamed/internal/middleware"
	"citamed/internal/repository"
	"citamed/internal/service"
	"citamed/internal/ws"
	"citamed/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, provider gateway.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	hub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, hub)
	apptSvc := service.NewAppointmentService(cfg.Booking, apptRepo, userRepo, notifSvc)
	paymentSvc := service.NewPaymentService(apptRepo, paymentRepo, provider, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo)
	apptHandler := handler.NewAppointmentHandler(apptSvc, auditRepo)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, &cfg.Gateway)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	patientMw := middleware.RequireRole(domain.RolePatient)
	doctorMw := middleware.RequireRole(domain.RoleDoctor)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "ws_connections": hub.ConnectionCount()})
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/me", authMw, authHandler.Me)
		}

		api.GET("/doctors", authMw, apptHandler.ListDoctors)
		api.GET("/doctors/:id/availability", authMw, apptHandler.Availability)

		appts := api.Group("/appointments")
		appts.Use(authMw)
		{
			appts.POST("", patientMw, apptHandler.Create)
			appts.GET("", apptHandler.List)
			appts.GET("/stats", patientMw, apptHandler.Stats)
			appts.GET("/:id", apptHandler.Get)
			appts.PUT("/:id/review", doctorMw, apptHandler.Review)
			appts.PATCH("/:id/reschedule", patientMw, apptHandler.Reschedule)
			appts.DELETE("/:id", apptHandler.Cancel)
		}

		payments := api.Group("/payments")
		payments.Use(authMw)
		{
			payments.POST("", patientMw, paymentHandler.Submit)
			payments.GET("/appointment/:id", patientMw, paymentHandler.Status)
			payments.GET("/history", patientMw, paymentHandler.History)
			payments.GET("/sandbox/info", paymentHandler.SandboxInfo)
		}

		notifications := api.Group("/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		api.GET("/ws/events", ws.UpgradeEventsWS(&cfg.JWT, hub))
	}

	return r
}
