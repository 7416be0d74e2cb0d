package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/user"
)

// RegisterUserRoutes wires the authenticated profile endpoint.
func RegisterUserRoutes(r fiber.Router, h *user.Handler) {
	r.Get("/users/me", h.Me)
}
