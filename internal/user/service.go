package user

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medisure/claims-portal/internal/apperr"
)

const patientIDPrefix = "PAT-"

// Service manages user accounts.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Validate checks the registration payload.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 0)),
		validation.Field(&in.Role, validation.In(RolePatient, RoleAdmin)),
	)
}

// Register creates a new user with a hashed password. Accounts default to
// the patient role; patients receive a generated patient identifier usable
// as a login alias.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = RolePatient
	}
	if err := in.Validate(); err != nil {
		return User{}, apperr.Validation(err.Error())
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return User{}, apperr.Validation("email already registered")
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	id := uuid.NewString()
	user := User{
		ID:           id,
		Email:        in.Email,
		Name:         in.Name,
		Role:         in.Role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if in.Role == RolePatient {
		user.PatientID = patientIDPrefix + id[:8]
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Profile returns the account for the given user identifier.
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	return s.repo.FindByID(ctx, userID)
}

// List returns all users. Admin only.
func (s *Service) List(ctx context.Context, actor Actor) ([]User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorization("admin role required")
	}
	return s.repo.List(ctx)
}

// Delete removes a user account. Admin only.
func (s *Service) Delete(ctx context.Context, actor Actor, userID string) error {
	if !actor.IsAdmin() {
		return apperr.Authorization("admin role required")
	}
	return s.repo.Delete(ctx, userID)
}
