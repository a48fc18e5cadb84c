// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clinic_backend/internal/appointment"
	"clinic_backend/internal/auth"
	"clinic_backend/internal/common"
	"clinic_backend/internal/config"
	"clinic_backend/internal/doctor"
	"clinic_backend/internal/jobs"
	"clinic_backend/internal/middleware"
	"clinic_backend/internal/notification"
	"clinic_backend/internal/shared"
	"clinic_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server bundles the HTTP server with its background jobs.
type Server struct {
	httpServer   *http.Server
	retentionJob *jobs.NotificationRetentionJob
	cfg          *config.Config
	logger       *zap.Logger
}

// NewServer assembles the router, attaches the handlers and wraps the
// result in an http.Server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	tokenService shared.TokenService,
	blocklist shared.TokenBlocklist,
	userService user.Service,
	userHandler *user.Handler,
	authHandler *auth.Handler,
	doctorHandler *doctor.Handler,
	appointmentHandler *appointment.Handler,
	notificationHandler *notification.Handler,
	retentionJob *jobs.NotificationRetentionJob,
) *Server {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMW := middleware.AuthMiddleware(tokenService, userService, blocklist, logger)
	api := router.Group("/api")

	// /api/user: registration and login are public, everything else needs
	// a session.
	userGroup := api.Group("/user")
	userHandler.RegisterPublicRoutes(userGroup)

	userAuthed := userGroup.Group("")
	userAuthed.Use(authMW)
	authHandler.RegisterRoutes(userAuthed)
	doctorHandler.RegisterUserRoutes(userAuthed)
	appointmentHandler.RegisterUserRoutes(userAuthed)
	notificationHandler.RegisterRoutes(userAuthed)

	// /api/doctor: approved doctors only.
	doctorGroup := api.Group("/doctor")
	doctorGroup.Use(authMW, middleware.DoctorAuthMiddleware())
	doctorHandler.RegisterDoctorRoutes(doctorGroup)
	appointmentHandler.RegisterDoctorRoutes(doctorGroup)

	// /api/admin: the admin role only.
	adminGroup := api.Group("/admin")
	adminGroup.Use(authMW, middleware.RoleAuthMiddleware(common.RoleAdmin))
	userHandler.RegisterAdminRoutes(adminGroup)
	doctorHandler.RegisterAdminRoutes(adminGroup)
	appointmentHandler.RegisterAdminRoutes(adminGroup)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ServerTimeout,
		WriteTimeout: cfg.ServerTimeout,
		IdleTimeout:  2 * cfg.ServerTimeout,
	}

	return &Server{
		httpServer:   httpServer,
		retentionJob: retentionJob,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start launches the background jobs and serves HTTP until the listener
// closes. It blocks.
func (s *Server) Start() error {
	if err := s.retentionJob.Start(); err != nil {
		return fmt.Errorf("starting notification retention job: %w", err)
	}

	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the background jobs and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	s.retentionJob.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
