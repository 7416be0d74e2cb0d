package claim

import (
	"context"
	"strings"
	"testing"

	"github.com/medisure/claims-portal/internal/apperr"
	"github.com/medisure/claims-portal/internal/events"
	"github.com/medisure/claims-portal/internal/logging"
	"github.com/medisure/claims-portal/internal/storage"
	"github.com/medisure/claims-portal/internal/user"
)

var (
	patientA = user.Actor{ID: "user-a", Role: user.RolePatient, PatientID: "PAT-aaaaaaaa"}
	patientB = user.Actor{ID: "user-b", Role: user.RolePatient, PatientID: "PAT-bbbbbbbb"}
	admin    = user.Actor{ID: "user-admin", Role: user.RoleAdmin}
)

func newTestService() (*Service, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	logger := logging.Discard()
	svc := NewService(NewMemoryRepository(), store, events.NewLogPublisher(logger), logger)
	return svc, store
}

func TestSubmitAndListRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, uploadURL, err := svc.Submit(ctx, patientA, SubmitInput{
		Amount: 100.50, Description: "dental", PolicyNumber: "POL-1",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", created.Status)
	}
	if uploadURL == "" {
		t.Fatalf("expected an upload url")
	}

	claims, err := svc.ListOwn(ctx, patientA)
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected exactly one claim, got %d", len(claims))
	}
	got := claims[0]
	if got.Amount != 100.50 || got.Description != "dental" || got.Status != StatusPending {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.UserID != patientA.ID {
		t.Fatalf("claim owned by %s, expected %s", got.UserID, patientA.ID)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   SubmitInput
	}{
		{"negative amount", SubmitInput{Amount: -1, Description: "dental", PolicyNumber: "POL-1"}},
		{"missing description", SubmitInput{Amount: 10, PolicyNumber: "POL-1"}},
		{"missing policy number", SubmitInput{Amount: 10, Description: "dental"}},
	}
	for _, tc := range cases {
		if _, _, err := svc.Submit(ctx, patientA, tc.in); !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestListOwnIsolation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.Submit(ctx, patientA, SubmitInput{Amount: 10, Description: "a", PolicyNumber: "P"}); err != nil {
		t.Fatalf("submit a: %v", err)
	}
	if _, _, err := svc.Submit(ctx, patientB, SubmitInput{Amount: 20, Description: "b", PolicyNumber: "P"}); err != nil {
		t.Fatalf("submit b: %v", err)
	}

	claims, err := svc.ListOwn(ctx, patientA)
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	for _, c := range claims {
		if c.UserID != patientA.ID {
			t.Fatalf("claim of %s leaked into %s's listing", c.UserID, patientA.ID)
		}
	}
}

func TestAttachDocument(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	created, _, err := svc.Submit(ctx, patientA, SubmitInput{Amount: 10, Description: "a", PolicyNumber: "P"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	updated, err := svc.AttachDocument(ctx, patientA, created.ID, "receipt.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if updated.DocumentKey == "" {
		t.Fatalf("expected document key to be set")
	}
	if _, ok := store.Object(updated.DocumentKey); !ok {
		t.Fatalf("document not stored under %s", updated.DocumentKey)
	}
}

func TestAttachDocumentAuthorization(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, _, err := svc.Submit(ctx, patientA, SubmitInput{Amount: 10, Description: "a", PolicyNumber: "P"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.AttachDocument(ctx, patientB, created.ID, "receipt.pdf", "application/pdf", strings.NewReader("x")); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("expected authorization error for non-owner, got %v", err)
	}
	if _, err := svc.AttachDocument(ctx, patientA, "missing", "receipt.pdf", "application/pdf", strings.NewReader("x")); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown claim, got %v", err)
	}
	if _, err := svc.AttachDocument(ctx, patientA, created.ID, "notes.txt", "text/plain", strings.NewReader("x")); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for non-pdf, got %v", err)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, _, err := svc.Submit(ctx, patientA, SubmitInput{Amount: 10, Description: "a", PolicyNumber: "P"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	approved, err := svc.Transition(ctx, admin, created.ID, StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("expected APPROVED, got %s", approved.Status)
	}

	// A decided claim stays decided.
	if _, err := svc.Transition(ctx, admin, created.ID, StatusRejected); !apperr.IsKind(err, apperr.KindState) {
		t.Fatalf("expected state error on re-review, got %v", err)
	}
	claims, err := svc.AdminList(ctx, admin, string(StatusApproved))
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(claims) != 1 || claims[0].Status != StatusApproved {
		t.Fatalf("status changed after failed transition: %+v", claims)
	}
}

func TestTransitionAuthorizationAndValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, _, err := svc.Submit(ctx, patientA, SubmitInput{Amount: 10, Description: "a", PolicyNumber: "P"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.Transition(ctx, patientA, created.ID, StatusApproved); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("expected authorization error for patient, got %v", err)
	}
	if _, err := svc.Transition(ctx, admin, created.ID, StatusPending); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for PENDING target, got %v", err)
	}
	if _, err := svc.Transition(ctx, admin, "missing", StatusApproved); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminListFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, _, err := svc.Submit(ctx, patientA, SubmitInput{Amount: 10, Description: "a", PolicyNumber: "P"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err := svc.Submit(ctx, patientB, SubmitInput{Amount: 20, Description: "b", PolicyNumber: "P"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Transition(ctx, admin, first.ID, StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	approved, err := svc.AdminList(ctx, admin, string(StatusApproved))
	if err != nil {
		t.Fatalf("admin list approved: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != first.ID {
		t.Fatalf("expected approved claim %s, got %+v", first.ID, approved)
	}

	pending, err := svc.AdminList(ctx, admin, string(StatusPending))
	if err != nil {
		t.Fatalf("admin list pending: %v", err)
	}
	for _, c := range pending {
		if c.ID == first.ID {
			t.Fatalf("approved claim still listed as pending")
		}
	}

	all, err := svc.AdminList(ctx, admin, "")
	if err != nil {
		t.Fatalf("admin list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(all))
	}

	if _, err := svc.AdminList(ctx, admin, "SHREDDED"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
	if _, err := svc.AdminList(ctx, patientA, ""); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("expected authorization error for patient, got %v", err)
	}
}

func TestAdminListByPatient(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.Submit(ctx, patientA, SubmitInput{Amount: 10, Description: "a", PolicyNumber: "P"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err := svc.Submit(ctx, patientB, SubmitInput{Amount: 20, Description: "b", PolicyNumber: "P"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	claims, err := svc.AdminListByPatient(ctx, admin, patientA.PatientID)
	if err != nil {
		t.Fatalf("list by patient: %v", err)
	}
	if len(claims) != 1 || claims[0].PatientID != patientA.PatientID {
		t.Fatalf("unexpected claims for patient: %+v", claims)
	}

	if _, err := svc.AdminListByPatient(ctx, patientB, patientA.PatientID); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}
