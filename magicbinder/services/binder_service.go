package services

import (
	"context"

	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/abrams/magicbinder/magicbinder/inventory"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BinderService manages the unallocated side of a user's collection.
// Acquire and Release touch only the binder; moving copies in or out of
// decks goes through the inventory coordinator.
type BinderService struct {
	db     *bun.DB
	binder repositories.BinderRepository
	cards  repositories.CardRepository
	owned  *inventory.OwnershipCache
}

func NewBinderService(db *bun.DB, binder repositories.BinderRepository, cards repositories.CardRepository, owned *inventory.OwnershipCache) *BinderService {
	return &BinderService{db: db, binder: binder, cards: cards, owned: owned}
}

// Acquire records newly obtained copies. The card must exist in the catalog.
func (s *BinderService) Acquire(ctx context.Context, userID int64, cardID uuid.UUID, amount int) error {
	if amount <= 0 {
		return &inventory.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}
	if _, err := s.cards.GetByID(ctx, cardID); err != nil {
		return err
	}
	if err := s.binder.Add(ctx, s.db, userID, cardID, amount); err != nil {
		return err
	}
	s.owned.Invalidate(userID, cardID)
	return nil
}

// Release removes copies from the binder entirely, for cards leaving the
// collection. Copies allocated to decks cannot be released.
func (s *BinderService) Release(ctx context.Context, userID int64, cardID uuid.UUID, amount int) error {
	if amount <= 0 {
		return &inventory.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	available, err := s.binder.Quantity(ctx, s.db, userID, cardID)
	if err != nil {
		return err
	}
	if available < amount {
		return &inventory.InsufficientQuantityError{CardID: cardID, Requested: amount, Available: available}
	}

	if err := s.binder.Remove(ctx, s.db, userID, cardID, amount); err != nil {
		return err
	}
	s.owned.Invalidate(userID, cardID)
	return nil
}

// OwnedQuantity reads the confirmed unallocated quantity, preferring the
// ownership cache.
func (s *BinderService) OwnedQuantity(ctx context.Context, userID int64, cardID uuid.UUID) (int, error) {
	if qty, ok := s.owned.Get(userID, cardID); ok {
		return qty, nil
	}
	qty, err := s.binder.Quantity(ctx, s.db, userID, cardID)
	if err != nil {
		return 0, err
	}
	s.owned.Put(userID, cardID, qty)
	return qty, nil
}
