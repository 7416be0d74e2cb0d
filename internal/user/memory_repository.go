package user

import (
	"context"
	"sync"

	"github.com/medisure/claims-portal/internal/apperr"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by user ID
}

// NewMemoryRepository builds an in-memory user store for testing and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return apperr.Validation("user already exists")
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return apperr.Validation("email already registered")
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, apperr.NotFound("user not found")
}

func (r *memoryRepository) FindByPatientID(_ context.Context, patientID string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.PatientID != "" && user.PatientID == patientID {
			return user, nil
		}
	}
	return User{}, apperr.NotFound("user not found")
}

func (r *memoryRepository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}
