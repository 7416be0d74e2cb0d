package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/config"
	"github.com/medisure/claims-portal/internal/user"
)

// Service validates credentials and issues bearer tokens.
type Service struct {
	cfg    config.Config
	repo   user.Repository
	users  *user.Service
	tokens *TokenService
}

// NewService creates a new auth service.
func NewService(cfg config.Config, repo user.Repository, users *user.Service, tokens *TokenService) *Service {
	return &Service{cfg: cfg, repo: repo, users: users, tokens: tokens}
}

// LoginInput carries credentials; exactly one of Email or PatientID
// identifies the account.
type LoginInput struct {
	Email     string
	PatientID string
	Password  string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	Role      string
	UserID    string
	PatientID string
	ExpiresIn int64
}

// Login resolves the account by email or patient id, verifies the password,
// and issues a signed token.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if in.Password == "" || (in.Email == "" && in.PatientID == "") {
		return LoginResult{}, apperr.Validation("email or patient_id and password are required")
	}

	account, err := s.lookup(ctx, in)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return LoginResult{}, apperr.Authentication("invalid credentials")
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(in.Password)); err != nil {
		return LoginResult{}, apperr.Authentication("invalid credentials")
	}

	token, err := s.tokens.Issue(ctx, account)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:     token,
		Role:      account.Role,
		UserID:    account.ID,
		PatientID: account.PatientID,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *Service) lookup(ctx context.Context, in LoginInput) (user.User, error) {
	if in.PatientID != "" {
		return s.repo.FindByPatientID(ctx, in.PatientID)
	}

	account, err := s.repo.FindByEmail(ctx, in.Email)
	if apperr.IsKind(err, apperr.KindNotFound) && s.seedableAdmin(in.Email) {
		return s.seedAdmin(ctx)
	}
	return account, err
}

// seedableAdmin reports whether the login targets the configured bootstrap
// admin account that does not exist yet.
func (s *Service) seedableAdmin(email string) bool {
	return s.cfg.AdminEmail != "" && email == s.cfg.AdminEmail && s.cfg.AdminPassword != ""
}

// seedAdmin creates the bootstrap admin on first login, so a fresh
// deployment has a reviewer account without manual setup.
func (s *Service) seedAdmin(ctx context.Context) (user.User, error) {
	return s.users.Register(ctx, user.RegisterInput{
		Name:     "System Admin",
		Email:    s.cfg.AdminEmail,
		Password: s.cfg.AdminPassword,
		Role:     user.RoleAdmin,
	})
}
