// Package admin exposes the review endpoints: user administration and claim
// decisions. Every route is mounted behind the admin role check; the
// services enforce the same requirement independently.
package admin

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/claim"
	"github.com/medisure/claims-portal/internal/user"
)

// Handler exposes admin endpoints.
type Handler struct {
	users  *user.Service
	claims *claim.Service
}

// NewHandler creates an admin handler.
func NewHandler(users *user.Service, claims *claim.Service) *Handler {
	return &Handler{users: users, claims: claims}
}

// ListUsers returns every registered user.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	users, err := h.users.List(c.UserContext(), actor)
	if err != nil {
		return err
	}
	out := make([]user.Response, 0, len(users))
	for _, u := range users {
		out = append(out, user.ToResponse(u))
	}
	return c.JSON(out)
}

// DeleteUser removes a user account.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	if err := h.users.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListClaims returns all claims, optionally filtered by ?status=.
func (h *Handler) ListClaims(c *fiber.Ctx) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	claims, err := h.claims.AdminList(c.UserContext(), actor, c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(claim.ToResponses(claims))
}

// ListPendingClaims returns the review queue.
func (h *Handler) ListPendingClaims(c *fiber.Ctx) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	claims, err := h.claims.AdminList(c.UserContext(), actor, string(claim.StatusPending))
	if err != nil {
		return err
	}
	return c.JSON(claim.ToResponses(claims))
}

// ListClaimsByPatient returns every claim filed under a patient identifier.
func (h *Handler) ListClaimsByPatient(c *fiber.Ctx) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	claims, err := h.claims.AdminListByPatient(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(claim.ToResponses(claims))
}

// ApproveClaim moves a pending claim to APPROVED.
func (h *Handler) ApproveClaim(c *fiber.Ctx) error {
	return h.transition(c, claim.StatusApproved)
}

// RejectClaim moves a pending claim to REJECTED.
func (h *Handler) RejectClaim(c *fiber.Ctx) error {
	return h.transition(c, claim.StatusRejected)
}

func (h *Handler) transition(c *fiber.Ctx, to claim.Status) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	updated, err := h.claims.Transition(c.UserContext(), actor, c.Params("id"), to)
	if err != nil {
		return err
	}
	return c.JSON(claim.ToResponse(updated))
}
