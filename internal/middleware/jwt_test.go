package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/auth"
	"github.com/medisure/claims-portal/internal/httpx"
	"github.com/medisure/claims-portal/internal/logging"
	"github.com/medisure/claims-portal/internal/secrets"
	"github.com/medisure/claims-portal/internal/user"
)

func newAuthTestApp(t *testing.T, tokens *auth.TokenService) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(logging.Discard())})
	app.Get("/protected", JWTAuth(tokens), func(c *fiber.Ctx) error {
		actor, _ := user.ActorFrom(c)
		return c.JSON(fiber.Map{"user_id": actor.ID, "role": actor.Role})
	})
	app.Get("/admin-only", JWTAuth(tokens), RequireRole(user.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenService(secrets.Static("test-secret"), time.Hour)
	app := newAuthTestApp(t, tokens)

	signed, err := tokens.Issue(context.Background(), user.User{ID: "u-1", Role: user.RolePatient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	tokens := auth.NewTokenService(secrets.Static("test-secret"), time.Hour)
	app := newAuthTestApp(t, tokens)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		if tc.header != "" {
			req.Header.Set(fiber.HeaderAuthorization, tc.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: app.Test: %v", tc.name, err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, resp.StatusCode)
		}
	}
}

func TestRequireRoleForbidsPatients(t *testing.T) {
	tokens := auth.NewTokenService(secrets.Static("test-secret"), time.Hour)
	app := newAuthTestApp(t, tokens)

	signed, err := tokens.Issue(context.Background(), user.User{ID: "u-1", Role: user.RolePatient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/admin-only", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	admin, err := tokens.Issue(context.Background(), user.User{ID: "u-2", Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("issue admin: %v", err)
	}
	req = httptest.NewRequest(fiber.MethodGet, "/admin-only", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test admin: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
}
