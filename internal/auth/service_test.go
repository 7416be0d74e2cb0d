package auth

import (
	"context"
	"testing"
	"time"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/config"
	"github.com/medisure/claims-portal/internal/secrets"
	"github.com/medisure/claims-portal/internal/user"
)

func newTestService(cfg config.Config) (*Service, *user.Service) {
	repo := user.NewMemoryRepository()
	users := user.NewService(repo)
	tokens := NewTokenService(secrets.Static("test-secret"), time.Hour)
	return NewService(cfg, repo, users, tokens), users
}

func TestLoginWithEmail(t *testing.T) {
	svc, users := newTestService(config.Config{})
	ctx := context.Background()

	registered, err := users.Register(ctx, user.RegisterInput{
		Name: "Ada", Email: "a@x.com", Password: "Passw0rd!", Role: user.RolePatient,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.UserID != registered.ID || result.Role != user.RolePatient {
		t.Fatalf("unexpected login result: %+v", result)
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}
}

func TestLoginWithPatientID(t *testing.T) {
	svc, users := newTestService(config.Config{})
	ctx := context.Background()

	registered, err := users.Register(ctx, user.RegisterInput{
		Name: "Ada", Email: "a@x.com", Password: "Passw0rd!", Role: user.RolePatient,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(ctx, LoginInput{PatientID: registered.PatientID, Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("login by patient id: %v", err)
	}
	if result.UserID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, result.UserID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users := newTestService(config.Config{})
	ctx := context.Background()

	if _, err := users.Register(ctx, user.RegisterInput{
		Name: "Ada", Email: "a@x.com", Password: "Passw0rd!", Role: user.RolePatient,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong-pass"}); !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error on wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "Passw0rd!"}); !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error on unknown email, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Password: "Passw0rd!"}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error on missing identifier, got %v", err)
	}
}

func TestLoginSeedsBootstrapAdmin(t *testing.T) {
	cfg := config.Config{AdminEmail: "admin@healthcare.com", AdminPassword: "SecureAdmin@123"}
	svc, _ := newTestService(cfg)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{Email: "admin@healthcare.com", Password: "SecureAdmin@123"})
	if err != nil {
		t.Fatalf("bootstrap admin login: %v", err)
	}
	if result.Role != user.RoleAdmin {
		t.Fatalf("expected admin role, got %s", result.Role)
	}

	// Second login hits the persisted account rather than re-seeding.
	again, err := svc.Login(ctx, LoginInput{Email: "admin@healthcare.com", Password: "SecureAdmin@123"})
	if err != nil {
		t.Fatalf("second admin login: %v", err)
	}
	if again.UserID != result.UserID {
		t.Fatalf("admin was re-seeded with a new id")
	}
}

func TestLoginNoSeedWithoutConfiguredPassword(t *testing.T) {
	cfg := config.Config{AdminEmail: "admin@healthcare.com"}
	svc, _ := newTestService(cfg)

	if _, err := svc.Login(context.Background(), LoginInput{Email: "admin@healthcare.com", Password: "anything-goes"}); !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}
