package claim

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/medisure/claims-portal/internal/apperr"
)

type memoryRepository struct {
	mu     sync.RWMutex
	claims map[string]Claim
}

// NewMemoryRepository builds an in-memory claim store for testing and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{claims: make(map[string]Claim)}
}

func (r *memoryRepository) Create(_ context.Context, claim Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.claims[claim.ID]; exists {
		return apperr.State("claim already exists")
	}
	r.claims[claim.ID] = claim
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	claim, ok := r.claims[id]
	if !ok {
		return Claim{}, apperr.NotFound("claim not found")
	}
	return claim, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, userID string) ([]Claim, error) {
	return r.filter(func(c Claim) bool { return c.UserID == userID }), nil
}

func (r *memoryRepository) List(_ context.Context, status Status) ([]Claim, error) {
	return r.filter(func(c Claim) bool { return status == "" || c.Status == status }), nil
}

func (r *memoryRepository) ListByPatient(_ context.Context, patientID string) ([]Claim, error) {
	return r.filter(func(c Claim) bool { return c.PatientID != "" && c.PatientID == patientID }), nil
}

func (r *memoryRepository) filter(keep func(Claim) bool) []Claim {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var claims []Claim
	for _, claim := range r.claims {
		if keep(claim) {
			claims = append(claims, claim)
		}
	}
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].CreatedAt.After(claims[j].CreatedAt)
	})
	return claims
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id string, from, to Status) (Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.claims[id]
	if !ok {
		return Claim{}, apperr.NotFound("claim not found")
	}
	if claim.Status != from {
		return Claim{}, apperr.State(fmt.Sprintf("claim is %s, expected %s", claim.Status, from))
	}
	claim.Status = to
	r.claims[id] = claim
	return claim, nil
}

func (r *memoryRepository) SetDocumentKey(_ context.Context, id, key string) (Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	claim, ok := r.claims[id]
	if !ok {
		return Claim{}, apperr.NotFound("claim not found")
	}
	claim.DocumentKey = key
	r.claims[id] = claim
	return claim, nil
}
