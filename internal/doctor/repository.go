// File: internal/doctor/repository.go
package doctor

import (
	"context"
	"errors"
	"fmt"

	"clinic_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for doctor profiles.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	FindByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	FindByEmail(ctx context.Context, email string) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	ListByStatus(ctx context.Context, status common.ReviewStatus, page, pageSize int) ([]Doctor, int64, error)
	List(ctx context.Context, page, pageSize int) ([]Doctor, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM-backed doctor repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, d *Doctor) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict
		}
		return fmt.Errorf("creating doctor profile: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("finding doctor by id: %w", err)
	}
	return &d, nil
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	var d Doctor
	if err := r.db.WithContext(ctx).First(&d, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("finding doctor by user id: %w", err)
	}
	return &d, nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*Doctor, error) {
	var d Doctor
	if err := r.db.WithContext(ctx).First(&d, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("finding doctor by email: %w", err)
	}
	return &d, nil
}

func (r *gormRepository) Update(ctx context.Context, d *Doctor) error {
	if err := r.db.WithContext(ctx).Save(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrConflict
		}
		return fmt.Errorf("updating doctor profile: %w", err)
	}
	return nil
}

func (r *gormRepository) ListByStatus(ctx context.Context, status common.ReviewStatus, page, pageSize int) ([]Doctor, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Doctor{}).Where("status = ?", status), page, pageSize)
}

func (r *gormRepository) List(ctx context.Context, page, pageSize int) ([]Doctor, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Doctor{}), page, pageSize)
}

func (r *gormRepository) list(ctx context.Context, query *gorm.DB, page, pageSize int) ([]Doctor, int64, error) {
	var doctors []Doctor
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting doctors: %w", err)
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&doctors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing doctors: %w", err)
	}
	return doctors, total, nil
}
