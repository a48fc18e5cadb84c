//go:build wireinject
// +build wireinject

// File: cmd/server/wire.go
package main

import (
	"clinic_backend/internal/app"
	"clinic_backend/internal/appointment"
	"clinic_backend/internal/auth"
	"clinic_backend/internal/config"
	"clinic_backend/internal/doctor"
	"clinic_backend/internal/filestorage"
	"clinic_backend/internal/jobs"
	"clinic_backend/internal/notification"
	"clinic_backend/internal/user"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func initializeServer(cfg *config.Config, logger *zap.Logger, db *gorm.DB) (*app.Server, error) {
	wire.Build(
		auth.NewJWTService,
		auth.NewInMemoryBlocklistService,
		auth.NewHandler,

		user.NewGORMRepository,
		user.NewService,
		user.NewHandler,

		notification.NewGORMRepository,
		notification.NewService,
		notification.NewHandler,

		doctor.NewGORMRepository,
		doctor.NewService,
		doctor.NewHandler,

		filestorage.NewLocalService,

		appointment.NewGORMRepository,
		appointment.NewService,
		appointment.NewHandler,

		jobs.NewNotificationRetentionJob,
		app.NewServer,
	)
	return nil, nil
}
