// File: internal/user/service.go
package user

import (
	"context"
	"errors"

	"clinic_backend/internal/common"
	"clinic_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the business logic for account registration and sessions.
type Service interface {
	shared.PrincipalSource
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindAdmin(ctx context.Context) (*User, error)
	UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) error
	SetDoctorFlag(ctx context.Context, id uuid.UUID, isDoctor bool) error
	List(ctx context.Context, page, pageSize int) ([]UserResponse, int64, error)
}

// ServiceImplementation implements the user Service interface.
type ServiceImplementation struct {
	repo         Repository
	tokenService shared.TokenService
	logger       *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, tokenService shared.TokenService, logger *zap.Logger) Service {
	return &ServiceImplementation{
		repo:         repo,
		tokenService: tokenService,
		logger:       logger.Named("user_service"),
	}
}

// Register creates an account. The very first registration that asks for the
// admin role gets it; every later request is stored as a regular user, and a
// second explicit admin registration is rejected. IsDoctor always starts
// false regardless of the payload.
func (s *ServiceImplementation) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	email := common.NormalizeEmail(req.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrConflict.WithDetails("An account with this email already exists.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	role := common.RoleUser
	if req.Type == common.RoleAdmin {
		exists, err := s.repo.AdminExists(ctx)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, common.ErrConflict.WithDetails("An admin account already exists.")
		}
		role = common.RoleAdmin
	}

	hash, err := common.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, common.ErrInternalServer
	}

	newUser := &User{
		FullName:     common.NormalizeName(req.FullName),
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         role,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		// The unique indexes close the races the pre-checks leave open:
		// duplicate email, or two first-admin registrations at once.
		if errors.Is(err, common.ErrConflict) {
			if role == common.RoleAdmin {
				return nil, common.ErrConflict.WithDetails("An admin account already exists.")
			}
			return nil, common.ErrConflict.WithDetails("An account with this email already exists.")
		}
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("userID", newUser.ID.String()),
		zap.String("role", newUser.Role))
	resp := ToUserResponse(newUser)
	return &resp, nil
}

// Login verifies credentials and issues a signed token. Unknown email and
// wrong password produce the same response.
func (s *ServiceImplementation) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	invalidCreds := common.ErrUnauthorized.WithDetails("Invalid email or password.")

	account, err := s.repo.FindByEmail(ctx, common.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalidCreds
		}
		return nil, err
	}
	if !common.CheckPasswordHash(req.Password, account.PasswordHash) {
		return nil, invalidCreds
	}

	token, expiresAt, err := s.tokenService.GenerateAccessToken(account)
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err), zap.String("userID", account.ID.String()))
		return nil, common.ErrInternalServer
	}

	s.logger.Info("User logged in", zap.String("userID", account.ID.String()))
	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserData:  ToUserResponse(account),
	}, nil
}

// PrincipalByID implements shared.PrincipalSource for the auth middleware.
func (s *ServiceImplementation) PrincipalByID(ctx context.Context, id uuid.UUID) (*shared.Principal, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &shared.Principal{
		ID:       account.ID,
		FullName: account.FullName,
		Email:    account.Email,
		Role:     account.Role,
		IsDoctor: account.IsDoctor,
	}, nil
}

func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// FindAdmin returns the singleton admin account, or common.ErrNotFound when
// no admin has registered yet.
func (s *ServiceImplementation) FindAdmin(ctx context.Context) (*User, error) {
	return s.repo.FindAdmin(ctx)
}

// UpdateFullName keeps the account's display name in sync when a doctor
// edits their profile.
func (s *ServiceImplementation) UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) error {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	account.FullName = common.NormalizeName(fullName)
	return s.repo.Update(ctx, account)
}

// SetDoctorFlag records the outcome of a credential review on the account.
func (s *ServiceImplementation) SetDoctorFlag(ctx context.Context, id uuid.UUID, isDoctor bool) error {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	account.IsDoctor = isDoctor
	return s.repo.Update(ctx, account)
}

// List returns all accounts for the admin dashboard, newest first.
func (s *ServiceImplementation) List(ctx context.Context, page, pageSize int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses, total, nil
}
