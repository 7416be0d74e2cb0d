package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/claim"
)

// RegisterClaimRoutes wires patient-facing claim endpoints. The idempotency
// middleware, when present, guards submission against duplicate retries.
func RegisterClaimRoutes(r fiber.Router, h *claim.Handler, idem fiber.Handler) {
	group := r.Group("/claims")
	if idem != nil {
		group.Post("/", idem, h.Submit)
	} else {
		group.Post("/", h.Submit)
	}
	group.Get("/my", h.ListMy)
	group.Post("/:id/document", h.AttachDocument)
}
