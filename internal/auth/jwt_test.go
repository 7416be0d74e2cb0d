package auth

import (
	"context"
	"testing"
	"time"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/secrets"
	"github.com/medisure/claims-portal/internal/user"
)

func testUser() user.User {
	return user.User{ID: "u-1", Role: user.RolePatient, PatientID: "PAT-12345678"}
}

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokenService(secrets.Static("test-secret"), time.Hour)
	ctx := context.Background()

	signed, err := tokens.Issue(ctx, testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	actor, err := tokens.Verify(ctx, signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if actor.ID != "u-1" || actor.Role != user.RolePatient || actor.PatientID != "PAT-12345678" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	tokens := NewTokenService(secrets.Static("test-secret"), time.Hour)
	// Negative TTL bypasses the constructor default to mint an already
	// expired token with a valid signature.
	tokens.ttl = -time.Minute
	ctx := context.Background()

	signed, err := tokens.Issue(ctx, testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verifier := NewTokenService(secrets.Static("test-secret"), time.Hour)
	if _, err := verifier.Verify(ctx, signed); !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error for expired token, got %v", err)
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	tokens := NewTokenService(secrets.Static("test-secret"), time.Hour)
	ctx := context.Background()

	signed, err := tokens.Issue(ctx, testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tampered := signed[:len(signed)-2] + "xx"
	if _, err := tokens.Verify(ctx, tampered); !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error for tampered token, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenService(secrets.Static("test-secret"), time.Hour)
	verifier := NewTokenService(secrets.Static("other-secret"), time.Hour)
	ctx := context.Background()

	signed, err := issuer.Issue(ctx, testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(ctx, signed); !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error for wrong secret, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	tokens := NewTokenService(secrets.Static("test-secret"), time.Hour)
	if _, err := tokens.Verify(context.Background(), "not.a.jwt"); !apperr.IsKind(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}
