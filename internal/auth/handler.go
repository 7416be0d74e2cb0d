package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/user"
)

// Handler exposes registration and login endpoints.
type Handler struct {
	users *user.Service
	svc   *Service
}

// NewHandler creates an auth handler.
func NewHandler(users *user.Service, svc *Service) *Handler {
	return &Handler{users: users, svc: svc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerResponse struct {
	UserID    string `json:"user_id"`
	PatientID string `json:"patient_id,omitempty"`
}

// Register creates a new account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	created, err := h.users.Register(c.UserContext(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(registerResponse{
		UserID:    created.ID,
		PatientID: created.PatientID,
	})
}

type loginRequest struct {
	Email     string `json:"email"`
	PatientID string `json:"patient_id"`
	Password  string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	UserID    string `json:"user_id"`
	PatientID string `json:"patient_id,omitempty"`
	ExpiresIn int64  `json:"expires_in"`
}

// Login validates credentials and returns a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Login(c.UserContext(), LoginInput{
		Email:     req.Email,
		PatientID: req.PatientID,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(loginResponse{
		Token:     result.Token,
		Role:      result.Role,
		UserID:    result.UserID,
		PatientID: result.PatientID,
		ExpiresIn: result.ExpiresIn,
	})
}
