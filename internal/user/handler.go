package user

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/apperr"
)

// ActorFrom retrieves the authenticated actor placed in the request locals
// by the JWT middleware.
func ActorFrom(c *fiber.Ctx) (Actor, bool) {
	actor, ok := c.Locals("actor").(Actor)
	return actor, ok
}

// Response is the JSON shape of a user profile.
type Response struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	PatientID string `json:"patient_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ToResponse converts a User to its JSON shape. Credential hashes never
// leave the service layer.
func ToResponse(u User) Response {
	return Response{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		PatientID: u.PatientID,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Handler exposes user profile endpoints.
type Handler struct {
	users *Service
}

// NewHandler creates a user handler.
func NewHandler(users *Service) *Handler {
	return &Handler{users: users}
}

// Me returns the calling user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	actor, ok := ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	profile, err := h.users.Profile(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(ToResponse(profile))
}
