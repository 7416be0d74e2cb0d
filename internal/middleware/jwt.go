package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/auth"
	"github.com/medisure/claims-portal/internal/user"
)

// JWTAuth returns a middleware that validates bearer tokens and stores the
// resolved actor in the request locals for handlers to pick up.
func JWTAuth(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return apperr.Authentication("missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		actor, err := tokens.Verify(c.UserContext(), tokenStr)
		if err != nil {
			return err
		}

		c.Locals("actor", actor)
		return c.Next()
	}
}

// RequireRole rejects requests whose actor does not hold the given role. It
// runs after JWTAuth on role-restricted route groups.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := user.ActorFrom(c)
		if !ok {
			return apperr.Authentication("missing authentication")
		}
		if actor.Role != role {
			return apperr.Authorization("insufficient role")
		}
		return c.Next()
	}
}
