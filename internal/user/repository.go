package user

import "context"

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByPatientID(ctx context.Context, patientID string) (User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
}
