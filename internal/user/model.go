package user

import "time"

// Roles a user can hold. Roles are fixed at registration.
const (
	RolePatient = "patient"
	RoleAdmin   = "admin"
)

// User represents a registered portal account.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PatientID    string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Actor identifies the authenticated caller of a protected operation, as
// resolved from the bearer token.
type Actor struct {
	ID        string
	Role      string
	PatientID string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
