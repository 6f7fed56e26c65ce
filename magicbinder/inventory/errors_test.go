package inventory

import (
	"errors"
	"testing"

	"github.com/abrams/magicbinder/magicbinder/database/repositories"
)

// A quantity guard tripping inside the store, past the coordinator's
// pre-checks, must still surface as insufficient quantity rather than a
// collaborator failure.
func TestClassifyKeepsStoreQuantityGuard(t *testing.T) {
	guard := &repositories.InsufficientQuantityError{Entity: "binder_entry", Requested: 3, Available: 1}

	got := classify(guard)
	if !IsInsufficientQuantity(got) {
		t.Fatalf("classify(%v) = %v, want insufficient quantity", guard, got)
	}
	if IsCollaboratorUnavailable(got) {
		t.Errorf("classify(%v) misclassified as collaborator failure", guard)
	}
}

func TestClassifyPassesDomainKindsThrough(t *testing.T) {
	kinds := []error{
		&InvalidInputError{Field: "amount", Reason: "must be positive"},
		&NotOwnedError{UserID: 7, Requested: 2, Available: 1},
		&InsufficientQuantityError{DeckID: 1, Requested: 4, Available: 2},
		&repositories.NotFoundError{Entity: "deck", ID: int64(9)},
	}
	for _, kind := range kinds {
		if got := classify(kind); got != kind {
			t.Errorf("classify(%v) = %v, want the error unchanged", kind, got)
		}
	}
}

func TestClassifyWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	got := classify(cause)
	if !IsCollaboratorUnavailable(got) {
		t.Fatalf("classify(%v) = %v, want collaborator failure", cause, got)
	}
	if !errors.Is(got, cause) {
		t.Error("wrapped error should unwrap to the cause")
	}
}
