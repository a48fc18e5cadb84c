// File: internal/shared/core.go
package shared

import (
	"context"
	"time"

	"clinic_backend/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal is the authenticated identity attached to a request by the
// auth middleware. It proves who the caller is; every workflow operation
// still re-checks what the caller may do.
type Principal struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsDoctor bool      `json:"isDoctor"`
}

// RequireAdmin fails unless the principal holds the admin role.
func (p *Principal) RequireAdmin() error {
	if p == nil || p.Role != common.RoleAdmin {
		return common.ErrForbidden.WithDetails("This operation requires the administrator role.")
	}
	return nil
}

// RequirePatient fails unless the principal is a standard user. Doctors
// and the admin use their own route groups.
func (p *Principal) RequirePatient() error {
	if p == nil || p.Role != common.RoleUser {
		return common.ErrForbidden.WithDetails("This operation is available to standard users only.")
	}
	return nil
}

// RequireDoctor fails unless the principal's doctor flag is set. Ownership
// of the specific doctor profile is checked per operation.
func (p *Principal) RequireDoctor() error {
	if p == nil || !p.IsDoctor {
		return common.ErrForbidden.WithDetails("This operation is available to approved doctors only.")
	}
	return nil
}

// PrincipalSource resolves a token subject to a live principal. A subject
// that no longer resolves means the user vanished and the token is dead.
type PrincipalSource interface {
	PrincipalByID(ctx context.Context, id uuid.UUID) (*Principal, error)
}

// UserDataForToken abstracts the user fields needed for token generation.
type UserDataForToken interface {
	GetID() uuid.UUID
	GetEmail() string
	GetRole() string
}

// TokenService defines the interface for JWT operations.
type TokenService interface {
	GenerateAccessToken(userData UserDataForToken) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the JWT claims structure.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenBlocklist records tokens revoked before their natural expiry.
type TokenBlocklist interface {
	AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error
	IsBlocklisted(ctx context.Context, jti string) (bool, error)
}
