// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic_backend/internal/appointment"
	"clinic_backend/internal/config"
	"clinic_backend/internal/doctor"
	"clinic_backend/internal/notification"
	"clinic_backend/internal/platform/database"
	"clinic_backend/internal/platform/logger"
	"clinic_backend/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewGORM(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseGORMDB(db)

	if err := database.Migrate(db,
		&user.User{},
		&doctor.Doctor{},
		&appointment.Appointment{},
		&notification.Notification{},
	); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	server, err := initializeServer(cfg, zapLogger, db)
	if err != nil {
		zapLogger.Fatal("Failed to initialize server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	case sig := <-quit:
		zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			zapLogger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}
