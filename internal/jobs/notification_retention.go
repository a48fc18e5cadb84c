// File: internal/jobs/notification_retention.go
package jobs

import (
	"context"
	"time"

	"clinic_backend/internal/config"
	"clinic_backend/internal/notification"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// NotificationRetentionJob periodically purges seen notifications older
// than the configured retention window.
type NotificationRetentionJob struct {
	notifications notification.Service
	cfg           *config.Config
	logger        *zap.Logger
	scheduler     *cron.Cron
}

// NewNotificationRetentionJob creates the retention job.
func NewNotificationRetentionJob(notifications notification.Service, cfg *config.Config, logger *zap.Logger) *NotificationRetentionJob {
	return &NotificationRetentionJob{
		notifications: notifications,
		cfg:           cfg,
		logger:        logger.Named("notification_retention_job"),
	}
}

// Start schedules the job. It is a no-op if the schedule is empty.
func (j *NotificationRetentionJob) Start() error {
	if j.cfg.NotificationRetentionSchedule == "" {
		j.logger.Info("Notification retention job disabled: no schedule configured")
		return nil
	}

	j.scheduler = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{j.logger}),
		cron.Recover(cronLogger{j.logger}),
	))
	_, err := j.scheduler.AddFunc(j.cfg.NotificationRetentionSchedule, j.run)
	if err != nil {
		return err
	}
	j.scheduler.Start()
	j.logger.Info("Notification retention job scheduled",
		zap.String("schedule", j.cfg.NotificationRetentionSchedule),
		zap.Int("retentionDays", j.cfg.NotificationRetentionDays))
	return nil
}

// Stop halts the scheduler and waits for a running purge to finish.
func (j *NotificationRetentionJob) Stop() {
	if j.scheduler == nil {
		return
	}
	ctx := j.scheduler.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		j.logger.Warn("Timed out waiting for notification retention job to stop")
	}
}

func (j *NotificationRetentionJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	retention := time.Duration(j.cfg.NotificationRetentionDays) * 24 * time.Hour
	purged, err := j.notifications.PurgeSeenOlderThan(ctx, retention)
	if err != nil {
		j.logger.Error("Notification retention purge failed", zap.Error(err))
		return
	}
	j.logger.Debug("Notification retention purge completed", zap.Int64("purged", purged))
}

// cronLogger adapts zap to the cron logger interface.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
