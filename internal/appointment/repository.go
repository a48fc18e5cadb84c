// File: internal/appointment/repository.go
package appointment

import (
	"context"
	"errors"
	"fmt"

	"clinic_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, page, pageSize int) ([]Appointment, int64, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, page, pageSize int) ([]Appointment, int64, error)
	List(ctx context.Context, page, pageSize int) ([]Appointment, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM-backed appointment repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, a *Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("creating appointment: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("finding appointment: %w", err)
	}
	return &a, nil
}

func (r *gormRepository) Update(ctx context.Context, a *Appointment) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("updating appointment: %w", err)
	}
	return nil
}

func (r *gormRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, page, pageSize int) ([]Appointment, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Appointment{}).Where("patient_id = ?", patientID), page, pageSize)
}

func (r *gormRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, page, pageSize int) ([]Appointment, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Appointment{}).Where("doctor_id = ?", doctorID), page, pageSize)
}

func (r *gormRepository) List(ctx context.Context, page, pageSize int) ([]Appointment, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&Appointment{}), page, pageSize)
}

func (r *gormRepository) list(ctx context.Context, query *gorm.DB, page, pageSize int) ([]Appointment, int64, error) {
	var appointments []Appointment
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting appointments: %w", err)
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&appointments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing appointments: %w", err)
	}
	return appointments, total, nil
}
