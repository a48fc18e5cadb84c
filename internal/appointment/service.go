// File: internal/appointment/service.go
package appointment

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"clinic_backend/internal/common"
	"clinic_backend/internal/doctor"
	"clinic_backend/internal/filestorage"
	"clinic_backend/internal/notification"
	"clinic_backend/internal/shared"
	"clinic_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic for the appointment workflow.
type Service interface {
	Book(ctx context.Context, c *gin.Context, principal *shared.Principal, req BookRequest, document *multipart.FileHeader) (*Response, error)
	Review(ctx context.Context, principal *shared.Principal, appointmentID uuid.UUID, decision common.ReviewStatus) (*Response, error)
	ResolveDocument(ctx context.Context, principal *shared.Principal, appointmentID uuid.UUID) (diskPath, downloadName string, err error)
	ListForPatient(ctx context.Context, principal *shared.Principal, page, pageSize int) ([]Response, int64, error)
	ListForDoctor(ctx context.Context, principal *shared.Principal, page, pageSize int) ([]Response, int64, error)
	ListAll(ctx context.Context, page, pageSize int) ([]Response, int64, error)
}

// ServiceImplementation implements the appointment Service interface.
type ServiceImplementation struct {
	repo          Repository
	doctorService doctor.Service
	userService   user.Service
	notifications notification.Service
	files         filestorage.Service
	logger        *zap.Logger
}

// NewService creates a new appointment service.
func NewService(
	repo Repository,
	doctorService doctor.Service,
	userService user.Service,
	notifications notification.Service,
	files filestorage.Service,
	logger *zap.Logger,
) Service {
	return &ServiceImplementation{
		repo:          repo,
		doctorService: doctorService,
		userService:   userService,
		notifications: notifications,
		files:         files,
		logger:        logger.Named("appointment_service"),
	}
}

// Book creates a pending appointment for the calling patient. Only regular
// users book; the doctor must exist and be approved. The optional document
// is stored before the row is written, and the doctor's account is notified
// best-effort.
func (s *ServiceImplementation) Book(ctx context.Context, c *gin.Context, principal *shared.Principal, req BookRequest, document *multipart.FileHeader) (*Response, error) {
	if err := principal.RequirePatient(); err != nil {
		return nil, err
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("Invalid doctor id.")
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	profile, err := s.doctorService.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound.WithDetails("Doctor not found.")
		}
		return nil, err
	}
	if profile.Status != common.StatusApproved {
		return nil, common.ErrInvalidState.WithDetails("This doctor is not approved for appointments.")
	}

	booking := &Appointment{
		DoctorID:  profile.ID,
		PatientID: principal.ID,
		Date:      date,
		Status:    common.StatusPending,
	}
	if document != nil {
		_, publicPath, err := s.files.Save(c, document)
		if err != nil {
			return nil, err
		}
		booking.DocumentName = filepath.Base(document.Filename)
		booking.DocumentPath = publicPath
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.notifyDoctor(ctx, profile, booking, principal)

	s.logger.Info("Appointment booked",
		zap.String("appointmentID", booking.ID.String()),
		zap.String("doctorID", profile.ID.String()),
		zap.String("patientID", principal.ID.String()))
	resp := toResponse(booking)
	resp.DoctorName = profile.FullName
	resp.UserName = principal.FullName
	return &resp, nil
}

func (s *ServiceImplementation) notifyDoctor(ctx context.Context, profile *doctor.Doctor, booking *Appointment, patient *shared.Principal) {
	relatedID := booking.ID
	err := s.notifications.Notify(ctx, notification.NewNotificationInput{
		UserID:      profile.UserID,
		Type:        notification.TypeNewAppointmentRequest,
		Message:     fmt.Sprintf("A new appointment request from %s.", patient.FullName),
		OnClickPath: "/doctorhome/appointments",
		RelatedID:   &relatedID,
	})
	if err != nil {
		s.logger.Warn("Failed to notify doctor about new appointment",
			zap.String("appointmentID", booking.ID.String()), zap.Error(err))
	}
}

// Review records the doctor's decision on a pending appointment. Only the
// doctor the appointment was booked with may decide it, the decision is
// terminal, and the patient is notified best-effort.
func (s *ServiceImplementation) Review(ctx context.Context, principal *shared.Principal, appointmentID uuid.UUID, decision common.ReviewStatus) (*Response, error) {
	profile, booking, err := s.ownedAppointment(ctx, principal, appointmentID)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransition(decision) {
		return nil, common.ErrConflict.WithDetails(
			fmt.Sprintf("Appointment has already been %s.", booking.Status))
	}

	booking.Status = decision
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	relatedID := booking.ID
	err = s.notifications.Notify(ctx, notification.NewNotificationInput{
		UserID:      booking.PatientID,
		Type:        notification.TypeAppointmentStatusUpdated,
		Message:     fmt.Sprintf("Your appointment with Dr. %s has been %s.", profile.FullName, decision),
		OnClickPath: "/appointments",
		RelatedID:   &relatedID,
	})
	if err != nil {
		s.logger.Warn("Failed to notify patient about appointment decision",
			zap.String("appointmentID", booking.ID.String()), zap.Error(err))
	}

	s.logger.Info("Appointment reviewed",
		zap.String("appointmentID", booking.ID.String()),
		zap.String("decision", string(decision)))
	resp := toResponse(booking)
	resp.DoctorName = profile.FullName
	return &resp, nil
}

// ResolveDocument locates the supporting document of an appointment owned
// by the calling doctor and returns its on-disk path plus the name to offer
// the client.
func (s *ServiceImplementation) ResolveDocument(ctx context.Context, principal *shared.Principal, appointmentID uuid.UUID) (string, string, error) {
	_, booking, err := s.ownedAppointment(ctx, principal, appointmentID)
	if err != nil {
		return "", "", err
	}
	if !booking.HasDocument() {
		return "", "", common.ErrNotFound.WithDetails("This appointment has no attached document.")
	}

	diskPath, err := s.files.Resolve(booking.DocumentPath)
	if err != nil {
		return "", "", err
	}
	downloadName := booking.DocumentName
	if downloadName == "" {
		downloadName = filepath.Base(booking.DocumentPath)
	}
	return diskPath, downloadName, nil
}

// ownedAppointment loads an appointment and verifies it belongs to the
// calling doctor. A doctor asking about someone else's booking gets the
// same not-found as a booking that does not exist.
func (s *ServiceImplementation) ownedAppointment(ctx context.Context, principal *shared.Principal, appointmentID uuid.UUID) (*doctor.Doctor, *Appointment, error) {
	if err := principal.RequireDoctor(); err != nil {
		return nil, nil, err
	}
	profile, err := s.doctorService.GetByUserID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrForbidden.WithDetails("No doctor profile linked to this account.")
		}
		return nil, nil, err
	}

	booking, err := s.repo.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrNotFound.WithDetails("Appointment not found.")
		}
		return nil, nil, err
	}
	if booking.DoctorID != profile.ID {
		return nil, nil, common.ErrNotFound.WithDetails("Appointment not found.")
	}
	return profile, booking, nil
}

// ListForPatient returns the calling patient's bookings with doctor names
// resolved.
func (s *ServiceImplementation) ListForPatient(ctx context.Context, principal *shared.Principal, page, pageSize int) ([]Response, int64, error) {
	appointments, total, err := s.repo.ListByPatient(ctx, principal.ID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return s.withNames(ctx, appointments, true, false), total, nil
}

// ListForDoctor returns the bookings made with the calling doctor, with
// patient names resolved.
func (s *ServiceImplementation) ListForDoctor(ctx context.Context, principal *shared.Principal, page, pageSize int) ([]Response, int64, error) {
	if err := principal.RequireDoctor(); err != nil {
		return nil, 0, err
	}
	profile, err := s.doctorService.GetByUserID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, 0, common.ErrForbidden.WithDetails("No doctor profile linked to this account.")
		}
		return nil, 0, err
	}

	appointments, total, err := s.repo.ListByDoctor(ctx, profile.ID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return s.withNames(ctx, appointments, false, true), total, nil
}

// ListAll returns every booking for the admin dashboard with both names
// resolved.
func (s *ServiceImplementation) ListAll(ctx context.Context, page, pageSize int) ([]Response, int64, error) {
	appointments, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return s.withNames(ctx, appointments, true, true), total, nil
}

// withNames converts models to responses, resolving doctor and patient
// display names with one lookup per distinct id. A name that cannot be
// resolved is left empty rather than failing the listing.
func (s *ServiceImplementation) withNames(ctx context.Context, appointments []Appointment, wantDoctor, wantPatient bool) []Response {
	doctorNames := make(map[uuid.UUID]string)
	patientNames := make(map[uuid.UUID]string)

	responses := make([]Response, 0, len(appointments))
	for i := range appointments {
		resp := toResponse(&appointments[i])

		if wantDoctor {
			name, ok := doctorNames[resp.DoctorID]
			if !ok {
				if profile, err := s.doctorService.GetByID(ctx, resp.DoctorID); err == nil {
					name = profile.FullName
				} else {
					s.logger.Warn("Failed to resolve doctor name",
						zap.String("doctorID", resp.DoctorID.String()), zap.Error(err))
				}
				doctorNames[resp.DoctorID] = name
			}
			resp.DoctorName = name
		}
		if wantPatient {
			name, ok := patientNames[resp.PatientID]
			if !ok {
				if account, err := s.userService.GetUserByID(ctx, resp.PatientID); err == nil {
					name = account.FullName
				} else {
					s.logger.Warn("Failed to resolve patient name",
						zap.String("patientID", resp.PatientID.String()), zap.Error(err))
				}
				patientNames[resp.PatientID] = name
			}
			resp.UserName = name
		}
		responses = append(responses, resp)
	}
	return responses
}
