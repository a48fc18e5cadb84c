// File: internal/doctor/model.go
package doctor

import (
	"time"

	"clinic_backend/internal/common"

	"github.com/google/uuid"
)

// Timings is the doctor's daily consultation window, stored as JSON.
type Timings struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// Doctor is a credential profile linked to exactly one user account, with
// its contact email unique across profiles. It is created pending and moves
// to approved or rejected by an admin review; both outcomes are terminal.
type Doctor struct {
	common.BaseModel
	UserID         uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	FullName       string              `gorm:"type:varchar(255);not null"`
	Email          string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone          string              `gorm:"type:varchar(50);not null"`
	Address        string              `gorm:"type:varchar(500)"`
	Specialization string              `gorm:"type:varchar(255);not null"`
	Experience     string              `gorm:"type:varchar(100)"`
	Fees           float64             `gorm:"not null"`
	Timings        Timings             `gorm:"serializer:json"`
	Status         common.ReviewStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// ApplyRequest is the payload for submitting a credential application.
// Status and the account link are never accepted from the client.
type ApplyRequest struct {
	FullName       string  `json:"fullName" binding:"required,min=2,max=255"`
	Email          string  `json:"email" binding:"required,email"`
	Phone          string  `json:"phone" binding:"required,max=50"`
	Address        string  `json:"address" binding:"omitempty,max=500"`
	Specialization string  `json:"specialization" binding:"required,max=255"`
	Experience     string  `json:"experience" binding:"omitempty,max=100"`
	Fees           float64 `json:"fees" binding:"required,gte=0"`
	Timings        Timings `json:"timings" binding:"required"`
}

// UpdateProfileRequest is the payload for a doctor editing their own
// profile. Status and UserID are pointers only to detect and reject any
// attempt to set them.
type UpdateProfileRequest struct {
	FullName       *string  `json:"fullName" binding:"omitempty,min=2,max=255"`
	Email          *string  `json:"email" binding:"omitempty,email"`
	Phone          *string  `json:"phone" binding:"omitempty,max=50"`
	Address        *string  `json:"address" binding:"omitempty,max=500"`
	Specialization *string  `json:"specialization" binding:"omitempty,max=255"`
	Experience     *string  `json:"experience" binding:"omitempty,max=100"`
	Fees           *float64 `json:"fees" binding:"omitempty,gte=0"`
	Timings        *Timings `json:"timings" binding:"omitempty"`
	Status         *string  `json:"status"`
	UserID         *string  `json:"userId"`
}

// ReviewRequest is the admin payload deciding a pending application.
type ReviewRequest struct {
	DoctorID string `json:"doctorId" binding:"required,uuid"`
	Status   string `json:"status" binding:"required"`
}

// Response is the API shape of a doctor profile.
type Response struct {
	ID             uuid.UUID           `json:"id"`
	UserID         *uuid.UUID          `json:"userId,omitempty"`
	FullName       string              `json:"fullName"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	Address        string              `json:"address,omitempty"`
	Specialization string              `json:"specialization"`
	Experience     string              `json:"experience,omitempty"`
	Fees           float64             `json:"fees"`
	Timings        Timings             `json:"timings"`
	Status         common.ReviewStatus `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// ToResponse converts a Doctor to its API shape. The account link is
// included only when includeUserID is set; admin listings omit it.
func ToResponse(d *Doctor, includeUserID bool) Response {
	resp := Response{
		ID:             d.ID,
		FullName:       d.FullName,
		Email:          d.Email,
		Phone:          d.Phone,
		Address:        d.Address,
		Specialization: d.Specialization,
		Experience:     d.Experience,
		Fees:           d.Fees,
		Timings:        d.Timings,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if includeUserID {
		userID := d.UserID
		resp.UserID = &userID
	}
	return resp
}
