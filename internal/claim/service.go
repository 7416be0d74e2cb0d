package claim

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/events"
	"github.com/medisure/claims-portal/internal/storage"
	"github.com/medisure/claims-portal/internal/user"
)

// Service manages the claim lifecycle.
type Service struct {
	repo      Repository
	store     storage.ObjectStore
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a new claim service.
func NewService(repo Repository, store storage.ObjectStore, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, store: store, publisher: publisher, logger: logger}
}

// SubmitInput carries a claim submission.
type SubmitInput struct {
	Amount       float64
	Description  string
	PolicyNumber string
}

// Validate checks the submission payload.
func (in SubmitInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Amount, validation.Min(0.0)),
		validation.Field(&in.Description, validation.Required),
		validation.Field(&in.PolicyNumber, validation.Required),
	)
}

// Submit creates a PENDING claim owned by the actor and returns a presigned
// upload URL for an optional supporting document. Ownership always comes
// from the token, never from the request body.
func (s *Service) Submit(ctx context.Context, actor user.Actor, in SubmitInput) (Claim, string, error) {
	if err := in.Validate(); err != nil {
		return Claim{}, "", apperr.Validation(err.Error())
	}

	claim := Claim{
		ID:           uuid.NewString(),
		UserID:       actor.ID,
		PatientID:    actor.PatientID,
		Amount:       in.Amount,
		Description:  in.Description,
		PolicyNumber: in.PolicyNumber,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, claim); err != nil {
		return Claim{}, "", err
	}

	// The claim stands on its own; a failed presign only costs the client
	// the direct-upload path.
	uploadURL, _, err := s.store.PresignUpload(ctx, storage.DocumentKey(claim.ID), "")
	if err != nil {
		s.logger.Warn("presign upload failed", "claim_id", claim.ID, "error", err)
		uploadURL = ""
	}
	return claim, uploadURL, nil
}

// AttachDocument stores a supporting document for a claim the actor owns and
// records its storage key.
func (s *Service) AttachDocument(ctx context.Context, actor user.Actor, claimID, filename, contentType string, body io.Reader) (Claim, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return Claim{}, apperr.Validation("only .pdf documents are accepted")
	}

	claim, err := s.repo.FindByID(ctx, claimID)
	if err != nil {
		return Claim{}, err
	}
	if claim.UserID != actor.ID {
		return Claim{}, apperr.Authorization("not the claim owner")
	}

	key := storage.DocumentKey(claim.ID)
	if err := s.store.Upload(ctx, key, contentType, body); err != nil {
		return Claim{}, err
	}

	updated, err := s.repo.SetDocumentKey(ctx, claim.ID, key)
	if err != nil {
		return Claim{}, err
	}

	s.publish(ctx, events.DocumentUploaded(claim.ID, claim.UserID, key))
	return updated, nil
}

// ListOwn returns the actor's claims, newest first.
func (s *Service) ListOwn(ctx context.Context, actor user.Actor) ([]Claim, error) {
	return s.repo.ListByOwner(ctx, actor.ID)
}

// AdminList returns all claims, or those matching statusFilter when it is
// non-empty. Admin only.
func (s *Service) AdminList(ctx context.Context, actor user.Actor, statusFilter string) ([]Claim, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorization("admin role required")
	}
	var status Status
	if statusFilter != "" {
		parsed, err := ParseStatus(statusFilter)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	return s.repo.List(ctx, status)
}

// AdminListByPatient returns all claims for a patient identifier. Admin only.
func (s *Service) AdminListByPatient(ctx context.Context, actor user.Actor, patientID string) ([]Claim, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorization("admin role required")
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// Transition moves a PENDING claim to a terminal decision. Admin only; a
// claim that is already decided stays unchanged and the call fails with a
// state error.
func (s *Service) Transition(ctx context.Context, actor user.Actor, claimID string, to Status) (Claim, error) {
	if !actor.IsAdmin() {
		return Claim{}, apperr.Authorization("admin role required")
	}
	if !to.Terminal() {
		return Claim{}, apperr.Validationf("cannot transition a claim to %s", to)
	}

	updated, err := s.repo.UpdateStatus(ctx, claimID, StatusPending, to)
	if err != nil {
		return Claim{}, err
	}

	s.publish(ctx, events.ClaimDecided(updated.ID, string(updated.Status)))
	return updated, nil
}

// publish sends a lifecycle event best-effort; the queue is an extension
// point, not part of the request contract.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish claim event failed", "action", event.Action, "claim_id", event.ClaimID, "error", err)
	}
}
