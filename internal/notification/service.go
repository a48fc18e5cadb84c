// File: internal/notification/service.go
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic for the notification inbox.
type Service interface {
	// Notify appends an entry to the recipient's inbox. Delivery is
	// best-effort for callers; they log and continue on error.
	Notify(ctx context.Context, input NewNotificationInput) error
	Inbox(ctx context.Context, userID uuid.UUID) (*InboxResponse, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	ClearAll(ctx context.Context, userID uuid.UUID) (int64, error)
	PurgeSeenOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// ServiceImplementation implements the notification Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &ServiceImplementation{repo: repo, logger: logger.Named("notification_service")}
}

func (s *ServiceImplementation) Notify(ctx context.Context, input NewNotificationInput) error {
	entry := &Notification{
		UserID:      input.UserID,
		Type:        input.Type,
		Message:     input.Message,
		OnClickPath: input.OnClickPath,
		RelatedID:   input.RelatedID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to deliver notification",
			zap.String("userID", input.UserID.String()),
			zap.String("type", input.Type),
			zap.Error(err))
		return fmt.Errorf("delivering notification: %w", err)
	}
	s.logger.Debug("Notification delivered",
		zap.String("userID", input.UserID.String()),
		zap.String("type", input.Type))
	return nil
}

func (s *ServiceImplementation) Inbox(ctx context.Context, userID uuid.UUID) (*InboxResponse, error) {
	unseen, err := s.repo.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	seen, err := s.repo.ListByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	inbox := &InboxResponse{
		Notifications:     make([]Response, 0, len(unseen)),
		SeenNotifications: make([]Response, 0, len(seen)),
	}
	for i := range unseen {
		inbox.Notifications = append(inbox.Notifications, ToResponse(&unseen[i]))
	}
	for i := range seen {
		inbox.SeenNotifications = append(inbox.SeenNotifications, ToResponse(&seen[i]))
	}
	return inbox, nil
}

// MarkAllRead flips every unseen entry to seen. Calling it with an empty
// inbox is a successful no-op.
func (s *ServiceImplementation) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllSeen(ctx, userID)
}

// ClearAll removes every entry, seen or not, from the user's inbox.
func (s *ServiceImplementation) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeleteAllForUser(ctx, userID)
}

// PurgeSeenOlderThan removes seen entries older than the retention window.
// Invoked by the scheduled retention job.
func (s *ServiceImplementation) PurgeSeenOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	purged, err := s.repo.DeleteSeenOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("Purged seen notifications", zap.Int64("count", purged), zap.Time("cutoff", cutoff))
	}
	return purged, nil
}
