package claim

import (
	"time"

	"github.com/medisure/claims-portal/internal/apperr"
)

// Status is the review state of a claim. PENDING is the only initial state;
// APPROVED and REJECTED are terminal.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus validates a client-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", apperr.Validationf("unknown status %q", s)
	}
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Claim is a patient's reimbursement request. Amount and description are
// immutable after creation; only the status and document reference change.
type Claim struct {
	ID           string
	UserID       string
	PatientID    string
	Amount       float64
	Description  string
	PolicyNumber string
	Status       Status
	DocumentKey  string
	CreatedAt    time.Time
}
