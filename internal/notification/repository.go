// File: internal/notification/repository.go
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, seen bool) ([]Notification, error)
	MarkAllSeen(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteSeenOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM-backed notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uuid.UUID, seen bool) ([]Notification, error) {
	// Insertion order: the inbox reads oldest first.
	var entries []Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND seen = ?", userID, seen).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return entries, nil
}

func (r *gormRepository) MarkAllSeen(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND seen = ?", userID, false).
		Update("seen", true)
	if result.Error != nil {
		return 0, fmt.Errorf("marking notifications seen: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("clearing notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) DeleteSeenOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("seen = ? AND created_at < ?", true, cutoff).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("purging seen notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
