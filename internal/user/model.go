// File: internal/user/model.go
package user

import (
	"time"

	"clinic_backend/internal/common"

	"github.com/google/uuid"
)

// User is the account record for every platform identity. Doctors keep a
// user account; IsDoctor flips when their credential application is approved.
// The partial unique index keeps the platform to a single admin account.
type User struct {
	common.BaseModel
	FullName     string `gorm:"type:varchar(255);not null"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Phone        string `gorm:"type:varchar(50)"`
	Role         string `gorm:"type:varchar(20);not null;default:'user';index:idx_users_singleton_admin,unique,where:role = 'admin'"`
	IsDoctor     bool   `gorm:"not null;default:false"`
}

func (User) TableName() string {
	return "users"
}

// GetID implements shared.UserDataForToken.
func (u *User) GetID() uuid.UUID { return u.ID }

// GetEmail implements shared.UserDataForToken.
func (u *User) GetEmail() string { return u.Email }

// GetRole implements shared.UserDataForToken.
func (u *User) GetRole() string { return u.Role }

// RegisterRequest is the payload for creating an account. Type may request
// "admin"; the service only honors it for the very first admin registration.
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=50"`
	Type     string `json:"type" binding:"omitempty,oneof=user admin"`
}

// LoginRequest is the payload for authenticating with email and password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the API shape of an account, never carrying the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsDoctor  bool      `json:"isdoctor"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginResponse bundles the signed token with the account data.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	UserData  UserResponse `json:"userData"`
}

// ToUserResponse converts a User model to its API representation.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		IsDoctor:  u.IsDoctor,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
