package claim

import "context"

// Repository persists claims. List results are ordered most recent first.
type Repository interface {
	Create(ctx context.Context, claim Claim) error
	FindByID(ctx context.Context, id string) (Claim, error)
	// ListByOwner returns the claims owned by the given user.
	ListByOwner(ctx context.Context, userID string) ([]Claim, error)
	// List returns all claims, or only those with the given status when it
	// is non-empty.
	List(ctx context.Context, status Status) ([]Claim, error)
	ListByPatient(ctx context.Context, patientID string) ([]Claim, error)
	// UpdateStatus atomically moves a claim from one status to another. It
	// fails with a state error if the claim is no longer in the from status,
	// leaving the record unchanged.
	UpdateStatus(ctx context.Context, id string, from, to Status) (Claim, error)
	// SetDocumentKey records the storage key of the claim's document.
	SetDocumentKey(ctx context.Context, id, key string) (Claim, error)
}
