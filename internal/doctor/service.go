// File: internal/doctor/service.go
package doctor

import (
	"context"
	"errors"
	"fmt"

	"clinic_backend/internal/common"
	"clinic_backend/internal/notification"
	"clinic_backend/internal/shared"
	"clinic_backend/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic for doctor credentialing.
type Service interface {
	Apply(ctx context.Context, principal *shared.Principal, req ApplyRequest) (*Response, error)
	Review(ctx context.Context, principal *shared.Principal, doctorID uuid.UUID, decision common.ReviewStatus) (*Response, error)
	UpdateOwnProfile(ctx context.Context, principal *shared.Principal, req UpdateProfileRequest) (*Response, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	ListApproved(ctx context.Context, page, pageSize int) ([]Response, int64, error)
	ListAll(ctx context.Context, page, pageSize int) ([]Response, int64, error)
}

// ServiceImplementation implements the doctor Service interface.
type ServiceImplementation struct {
	repo          Repository
	userService   user.Service
	notifications notification.Service
	logger        *zap.Logger
}

// NewService creates a new doctor service.
func NewService(repo Repository, userService user.Service, notifications notification.Service, logger *zap.Logger) Service {
	return &ServiceImplementation{
		repo:          repo,
		userService:   userService,
		notifications: notifications,
		logger:        logger.Named("doctor_service"),
	}
}

// Apply submits a credential application for the calling account. Only
// regular users who are not already doctors may apply, one application per
// account and one profile per email; the profile starts pending and the
// admin is notified. A missing admin downgrades the notification to a
// warning.
func (s *ServiceImplementation) Apply(ctx context.Context, principal *shared.Principal, req ApplyRequest) (*Response, error) {
	if err := principal.RequirePatient(); err != nil {
		return nil, err
	}
	if principal.IsDoctor {
		return nil, common.ErrForbidden.WithDetails("This account already holds an approved doctor profile.")
	}

	if _, err := s.repo.FindByUserID(ctx, principal.ID); err == nil {
		return nil, common.ErrConflict.WithDetails("You have already applied for a doctor account.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	email := common.NormalizeEmail(req.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrConflict.WithDetails("A doctor profile with this email already exists.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	profile := &Doctor{
		UserID:         principal.ID,
		FullName:       common.NormalizeName(req.FullName),
		Email:          email,
		Phone:          req.Phone,
		Address:        req.Address,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Fees:           req.Fees,
		Timings:        req.Timings,
		Status:         common.StatusPending,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		// A concurrent apply slipped past the pre-checks; the unique
		// indexes decide. Re-probe to attribute the conflict.
		if errors.Is(err, common.ErrConflict) {
			if _, lookupErr := s.repo.FindByUserID(ctx, principal.ID); lookupErr == nil {
				return nil, common.ErrConflict.WithDetails("You have already applied for a doctor account.")
			}
			return nil, common.ErrConflict.WithDetails("A doctor profile with this email already exists.")
		}
		return nil, err
	}

	s.notifyAdmin(ctx, profile)

	s.logger.Info("Doctor application submitted",
		zap.String("doctorID", profile.ID.String()),
		zap.String("userID", principal.ID.String()))
	resp := ToResponse(profile, true)
	return &resp, nil
}

func (s *ServiceImplementation) notifyAdmin(ctx context.Context, profile *Doctor) {
	admin, err := s.userService.FindAdmin(ctx)
	if err != nil {
		s.logger.Warn("No admin account to notify about doctor application",
			zap.String("doctorID", profile.ID.String()), zap.Error(err))
		return
	}
	relatedID := profile.ID
	err = s.notifications.Notify(ctx, notification.NewNotificationInput{
		UserID:      admin.ID,
		Type:        notification.TypeApplyDoctorRequest,
		Message:     fmt.Sprintf("%s has applied for a doctor account.", profile.FullName),
		OnClickPath: "/adminhome/doctors",
		RelatedID:   &relatedID,
	})
	if err != nil {
		s.logger.Warn("Failed to notify admin about doctor application",
			zap.String("doctorID", profile.ID.String()), zap.Error(err))
	}
}

// Review decides a pending application. Only the admin decides, and the
// decision is terminal: reviewing an already decided profile is a conflict.
// Approval flips the account's doctor flag; rejection clears it. The
// applicant is notified either way.
func (s *ServiceImplementation) Review(ctx context.Context, principal *shared.Principal, doctorID uuid.UUID, decision common.ReviewStatus) (*Response, error) {
	if err := principal.RequireAdmin(); err != nil {
		return nil, err
	}

	profile, err := s.repo.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("Doctor application not found.")
		}
		return nil, err
	}
	if !profile.Status.CanTransition(decision) {
		return nil, common.ErrConflict.WithDetails(
			fmt.Sprintf("Application has already been %s.", profile.Status))
	}

	profile.Status = decision
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	if err := s.userService.SetDoctorFlag(ctx, profile.UserID, decision == common.StatusApproved); err != nil {
		s.logger.Error("Failed to update doctor flag on account",
			zap.String("userID", profile.UserID.String()), zap.Error(err))
		return nil, err
	}

	relatedID := profile.ID
	err = s.notifications.Notify(ctx, notification.NewNotificationInput{
		UserID:      profile.UserID,
		Type:        notification.TypeDoctorAccountStatus,
		Message:     fmt.Sprintf("Your doctor account request has been %s.", decision),
		OnClickPath: "/notifications",
		RelatedID:   &relatedID,
	})
	if err != nil {
		s.logger.Warn("Failed to notify applicant about review outcome",
			zap.String("doctorID", profile.ID.String()), zap.Error(err))
	}

	s.logger.Info("Doctor application reviewed",
		zap.String("doctorID", profile.ID.String()),
		zap.String("decision", string(decision)))
	resp := ToResponse(profile, true)
	return &resp, nil
}

// UpdateOwnProfile edits the calling doctor's profile. Status and the
// account link are rejected outright; a full name change propagates to the
// account so both surfaces show the same name.
func (s *ServiceImplementation) UpdateOwnProfile(ctx context.Context, principal *shared.Principal, req UpdateProfileRequest) (*Response, error) {
	if req.Status != nil || req.UserID != nil {
		return nil, common.ErrBadRequest.WithDetails("Status and account link cannot be changed through profile updates.")
	}

	profile, err := s.repo.FindByUserID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("Doctor profile not found for this account.")
		}
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = common.NormalizeName(*req.FullName)
	}
	if req.Email != nil {
		profile.Email = common.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Address != nil {
		profile.Address = *req.Address
	}
	if req.Specialization != nil {
		profile.Specialization = *req.Specialization
	}
	if req.Experience != nil {
		profile.Experience = *req.Experience
	}
	if req.Fees != nil {
		profile.Fees = *req.Fees
	}
	if req.Timings != nil {
		profile.Timings = *req.Timings
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	if req.FullName != nil {
		if err := s.userService.UpdateFullName(ctx, profile.UserID, *req.FullName); err != nil {
			s.logger.Error("Failed to propagate name change to account",
				zap.String("userID", profile.UserID.String()), zap.Error(err))
			return nil, err
		}
	}

	resp := ToResponse(profile, true)
	return &resp, nil
}

func (s *ServiceImplementation) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ServiceImplementation) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// ListApproved returns only approved doctors, the set patients may book.
func (s *ServiceImplementation) ListApproved(ctx context.Context, page, pageSize int) ([]Response, int64, error) {
	doctors, total, err := s.repo.ListByStatus(ctx, common.StatusApproved, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(doctors, true), total, nil
}

// ListAll returns every application for the admin dashboard. The account
// link is omitted from this projection.
func (s *ServiceImplementation) ListAll(ctx context.Context, page, pageSize int) ([]Response, int64, error) {
	doctors, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(doctors, false), total, nil
}

func toResponses(doctors []Doctor, includeUserID bool) []Response {
	responses := make([]Response, 0, len(doctors))
	for i := range doctors {
		responses = append(responses, ToResponse(&doctors[i], includeUserID))
	}
	return responses
}
