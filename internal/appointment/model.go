// File: internal/appointment/model.go
package appointment

import (
	"time"

	"clinic_backend/internal/common"

	"github.com/google/uuid"
)

// Appointment is a patient's booking request with a doctor. It starts
// pending and is approved or rejected by the doctor; both outcomes are
// terminal. The optional document is a supporting file uploaded at booking.
type Appointment struct {
	common.BaseModel
	DoctorID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	PatientID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Date         time.Time           `gorm:"not null"`
	Status       common.ReviewStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	DocumentName string              `gorm:"type:varchar(255)"`
	DocumentPath string              `gorm:"type:varchar(512)"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// HasDocument reports whether a supporting document was uploaded.
func (a *Appointment) HasDocument() bool {
	return a.DocumentPath != ""
}

// BookRequest carries the multipart form fields of a booking. The
// supporting document travels as the form file, not in this struct.
type BookRequest struct {
	DoctorID string `form:"doctorId" binding:"required,uuid"`
	Date     string `form:"date" binding:"required"`
}

// ReviewRequest is the doctor's decision on a pending appointment.
type ReviewRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required,uuid"`
	Status        string `json:"status" binding:"required"`
}

// DocumentResponse mirrors the stored document reference.
type DocumentResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Response is the API shape of an appointment. DoctorName and UserName are
// resolved at read time so renames show up without rewriting bookings.
type Response struct {
	ID         uuid.UUID           `json:"id"`
	DoctorID   uuid.UUID           `json:"doctorId"`
	PatientID  uuid.UUID           `json:"userId"`
	DoctorName string              `json:"doctorName,omitempty"`
	UserName   string              `json:"userName,omitempty"`
	Date       time.Time           `json:"date"`
	Status     common.ReviewStatus `json:"status"`
	Document   *DocumentResponse   `json:"document,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

func toResponse(a *Appointment) Response {
	resp := Response{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Date:      a.Date,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
	if a.HasDocument() {
		resp.Document = &DocumentResponse{Filename: a.DocumentName, Path: a.DocumentPath}
	}
	return resp
}

// Accepted layouts for the booking date, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses a booking date in any accepted layout.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, common.ErrBadRequest.WithDetails(
		"Invalid date format. Use RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DD.")
}
