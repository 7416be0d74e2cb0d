package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/admin"
)

// RegisterAdminRoutes wires the review endpoints. The group is already
// gated by the admin role check.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler) {
	r.Get("/users", h.ListUsers)
	r.Delete("/users/:id", h.DeleteUser)

	r.Get("/claims", h.ListClaims)
	r.Get("/claims/pending", h.ListPendingClaims)
	r.Get("/claims/by-patient/:id", h.ListClaimsByPatient)
	r.Post("/claims/:id/approve", h.ApproveClaim)
	r.Post("/claims/:id/reject", h.RejectClaim)
}
