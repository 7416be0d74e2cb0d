package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := Validation("amount must be non-negative")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation kind, got %s", KindOf(err))
	}

	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("expected unknown kind for plain error")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", State("claim already decided"))
	if !IsKind(err, KindState) {
		t.Fatalf("expected state kind through wrapping, got %s", KindOf(err))
	}
}

func TestDependencyUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency("dynamodb put", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via errors.Is")
	}
	if err.Error() != "dynamodb put: connection refused" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
