// Package inventory enforces the conservation protocol between binders and
// deck allocations. Every mutation runs inside a single database
// transaction: all checks pass and every write lands, or nothing changes.
package inventory

import (
	"errors"
	"fmt"

	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/google/uuid"
)

// InvalidInputError rejects a request before any state is touched.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotOwnedError means the user's binder holds fewer unallocated copies than
// the request needs.
type NotOwnedError struct {
	UserID    int64
	CardID    uuid.UUID
	Requested int
	Available int
}

func (e *NotOwnedError) Error() string {
	return fmt.Sprintf("user %d owns %d unallocated copies of %s, requested %d",
		e.UserID, e.Available, e.CardID, e.Requested)
}

// InsufficientQuantityError means the source container holds fewer copies
// than the request needs. A zero DeckID means the source is the binder.
type InsufficientQuantityError struct {
	DeckID    int64
	CardID    uuid.UUID
	Sideboard bool
	Requested int
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	if e.DeckID == 0 {
		return fmt.Sprintf("binder holds %d copies of %s, requested %d",
			e.Available, e.CardID, e.Requested)
	}
	zone := "main"
	if e.Sideboard {
		zone = "sideboard"
	}
	return fmt.Sprintf("deck %d %s holds %d copies of %s, requested %d",
		e.DeckID, zone, e.Available, e.CardID, e.Requested)
}

// CollaboratorUnavailableError wraps a storage or network failure so callers
// can tell "you asked for something impossible" apart from "try again later".
type CollaboratorUnavailableError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorUnavailableError) Unwrap() error {
	return e.Err
}

func IsInvalidInput(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e)
}

func IsNotOwned(err error) bool {
	var e *NotOwnedError
	return errors.As(err, &e)
}

// IsInsufficientQuantity matches both the coordinator's zone-level kind and
// the repositories' row-level kind, so the taxonomy holds even when a guard
// trips inside the store rather than in a pre-check.
func IsInsufficientQuantity(err error) bool {
	var e *InsufficientQuantityError
	return errors.As(err, &e) || repositories.IsInsufficientQuantity(err)
}

// IsNotFound matches the repository not-found kind, which passes through the
// coordinator untouched.
func IsNotFound(err error) bool {
	return repositories.IsNotFound(err)
}

func IsCollaboratorUnavailable(err error) bool {
	var e *CollaboratorUnavailableError
	return errors.As(err, &e)
}

// classify passes expected domain errors through and wraps everything else
// as a collaborator failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		invalid         *InvalidInputError
		notOwned        *NotOwnedError
		insufficient    *InsufficientQuantityError
		rowInsufficient *repositories.InsufficientQuantityError
		notFound        *repositories.NotFoundError
		unavailable     *CollaboratorUnavailableError
	)
	if errors.As(err, &invalid) || errors.As(err, &notOwned) ||
		errors.As(err, &insufficient) || errors.As(err, &rowInsufficient) ||
		errors.As(err, &notFound) || errors.As(err, &unavailable) {
		return err
	}
	return &CollaboratorUnavailableError{Collaborator: "inventory store", Err: err}
}
