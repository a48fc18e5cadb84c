// File: internal/notification/model.go
package notification

import (
	"time"

	"clinic_backend/internal/common"

	"github.com/google/uuid"
)

// Notification types fanned out by the domain services.
const (
	TypeApplyDoctorRequest       = "apply-doctor-request"
	TypeDoctorAccountStatus      = "doctor-account-status"
	TypeNewAppointmentRequest    = "new-appointment-request"
	TypeAppointmentStatusUpdated = "appointment-status-updated"
)

// Notification is one entry in a user's inbox. Entries are append-only;
// marking read flips Seen, clearing removes the rows.
type Notification struct {
	common.BaseModel
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Type        string     `gorm:"type:varchar(64);not null" json:"type"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	OnClickPath string     `gorm:"type:varchar(255)" json:"onClickPath,omitempty"`
	RelatedID   *uuid.UUID `gorm:"type:uuid" json:"relatedId,omitempty"`
	Seen        bool       `gorm:"not null;default:false" json:"seen"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NewNotificationInput carries the fields for a single fan-out entry.
type NewNotificationInput struct {
	UserID      uuid.UUID
	Type        string
	Message     string
	OnClickPath string
	RelatedID   *uuid.UUID
}

// Response is the API shape of a notification entry.
type Response struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Message     string     `json:"message"`
	OnClickPath string     `json:"onClickPath,omitempty"`
	RelatedID   *uuid.UUID `json:"relatedId,omitempty"`
	Seen        bool       `json:"seen"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// InboxResponse splits a user's entries into unseen and seen, each in
// insertion order.
type InboxResponse struct {
	Notifications     []Response `json:"notifications"`
	SeenNotifications []Response `json:"seennotifications"`
}

// ToResponse converts a Notification model to its API representation.
func ToResponse(n *Notification) Response {
	return Response{
		ID:          n.ID,
		Type:        n.Type,
		Message:     n.Message,
		OnClickPath: n.OnClickPath,
		RelatedID:   n.RelatedID,
		Seen:        n.Seen,
		CreatedAt:   n.CreatedAt,
	}
}
