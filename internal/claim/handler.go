package claim

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/user"
)

// Response is the JSON shape of a claim.
type Response struct {
	ClaimID      string  `json:"claim_id"`
	UserID       string  `json:"user_id"`
	PatientID    string  `json:"patient_id,omitempty"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	PolicyNumber string  `json:"policy_number"`
	Status       string  `json:"claim_status"`
	DocumentKey  string  `json:"document_key,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UploadURL    string  `json:"s3_upload_url,omitempty"`
}

// ToResponse converts a Claim to its JSON shape.
func ToResponse(c Claim) Response {
	return Response{
		ClaimID:      c.ID,
		UserID:       c.UserID,
		PatientID:    c.PatientID,
		Amount:       c.Amount,
		Description:  c.Description,
		PolicyNumber: c.PolicyNumber,
		Status:       string(c.Status),
		DocumentKey:  c.DocumentKey,
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToResponses converts a slice of claims.
func ToResponses(claims []Claim) []Response {
	out := make([]Response, 0, len(claims))
	for _, c := range claims {
		out = append(out, ToResponse(c))
	}
	return out
}

// Handler exposes patient-facing claim endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a claim handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type submitRequest struct {
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	PolicyNumber string  `json:"policy_number"`
}

// Submit creates a new claim and returns it with an upload URL.
func (h *Handler) Submit(c *fiber.Ctx) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	created, uploadURL, err := h.svc.Submit(c.UserContext(), actor, SubmitInput{
		Amount:       req.Amount,
		Description:  req.Description,
		PolicyNumber: req.PolicyNumber,
	})
	if err != nil {
		return err
	}

	resp := ToResponse(created)
	resp.UploadURL = uploadURL
	return c.Status(http.StatusCreated).JSON(resp)
}

// AttachDocument accepts a multipart document upload for an owned claim.
func (h *Handler) AttachDocument(c *fiber.Ctx) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("multipart field 'file' is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperr.Validation("unreadable upload")
	}
	defer file.Close()

	updated, err := h.svc.AttachDocument(c.UserContext(), actor, c.Params("id"),
		fileHeader.Filename, fileHeader.Header.Get(fiber.HeaderContentType), file)
	if err != nil {
		return err
	}
	return c.JSON(ToResponse(updated))
}

// ListMy returns the caller's claims.
func (h *Handler) ListMy(c *fiber.Ctx) error {
	actor, ok := user.ActorFrom(c)
	if !ok {
		return apperr.Authentication("missing authentication")
	}
	claims, err := h.svc.ListOwn(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(ToResponses(claims))
}
