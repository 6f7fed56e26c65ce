package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DeckCardRepository manages zone allocations. One row exists per
// (deck, card, sideboard) with quantity >= 1; setting a quantity to zero
// removes the row.
type DeckCardRepository interface {
	Quantity(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, sideboard bool) (int, error)
	SetQuantity(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, sideboard bool, quantity int) error
	MoveZone(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, fromSideboard bool, amount int) error
	ListForDeck(ctx context.Context, db bun.IDB, deckID int64) ([]*models.DeckCard, error)
	ListWithCards(ctx context.Context, deckID int64) ([]*models.DeckCard, error)
	CountForDeck(ctx context.Context, deckID int64, sideboard bool) (int, error)
	DeleteForDeck(ctx context.Context, db bun.IDB, deckID int64) error
}

type deckCardRepository struct {
	*BaseRepository
}

func NewDeckCardRepository(db *bun.DB) DeckCardRepository {
	return &deckCardRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *deckCardRepository) Quantity(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, sideboard bool) (int, error) {
	dc := new(models.DeckCard)
	err := db.NewSelect().
		Model(dc).
		Column("quantity").
		Where("deck_id = ?", deckID).
		Where("card_id = ?", cardID).
		Where("sideboard = ?", sideboard).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, r.HandleError("quantity", "deck_card", err)
	}
	return dc.Quantity, nil
}

func (r *deckCardRepository) SetQuantity(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, sideboard bool, quantity int) error {
	if quantity < 0 {
		return &RepositoryError{Operation: "set_quantity", Entity: "deck_card",
			Err: fmt.Errorf("quantity cannot be negative, got %d", quantity)}
	}

	if quantity == 0 {
		_, err := db.NewDelete().
			Model((*models.DeckCard)(nil)).
			Where("deck_id = ?", deckID).
			Where("card_id = ?", cardID).
			Where("sideboard = ?", sideboard).
			Exec(ctx)
		return r.HandleError("set_quantity", "deck_card", err)
	}

	res, err := db.NewUpdate().
		Model((*models.DeckCard)(nil)).
		Set("quantity = ?", quantity).
		Set("updated_at = ?", time.Now()).
		Where("deck_id = ?", deckID).
		Where("card_id = ?", cardID).
		Where("sideboard = ?", sideboard).
		Exec(ctx)
	if err != nil {
		return r.HandleError("set_quantity", "deck_card", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		dc := &models.DeckCard{
			DeckID:    deckID,
			CardID:    cardID,
			Sideboard: sideboard,
			Quantity:  quantity,
			UpdatedAt: time.Now(),
		}
		if _, err := db.NewInsert().Model(dc).Exec(ctx); err != nil {
			return r.HandleError("set_quantity", "deck_card", err)
		}
	}
	return nil
}

// MoveZone moves amount copies of a card out of one zone and merges them
// into the other, deleting the source row when it empties. Runs inside the
// caller's transaction.
func (r *deckCardRepository) MoveZone(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, fromSideboard bool, amount int) error {
	if amount <= 0 {
		return &RepositoryError{Operation: "move_zone", Entity: "deck_card",
			Err: fmt.Errorf("amount must be positive, got %d", amount)}
	}

	source, err := r.Quantity(ctx, db, deckID, cardID, fromSideboard)
	if err != nil {
		return err
	}
	if source < amount {
		return &InsufficientQuantityError{Entity: "deck_card", Requested: amount, Available: source}
	}

	destination, err := r.Quantity(ctx, db, deckID, cardID, !fromSideboard)
	if err != nil {
		return err
	}
	if err := r.SetQuantity(ctx, db, deckID, cardID, fromSideboard, source-amount); err != nil {
		return err
	}
	return r.SetQuantity(ctx, db, deckID, cardID, !fromSideboard, destination+amount)
}

func (r *deckCardRepository) ListForDeck(ctx context.Context, db bun.IDB, deckID int64) ([]*models.DeckCard, error) {
	var cards []*models.DeckCard
	err := db.NewSelect().
		Model(&cards).
		Where("deck_id = ?", deckID).
		Order("sideboard ASC", "card_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("list_for_deck", "deck_card", err)
	}
	return cards, nil
}

// ListWithCards includes the catalog card and faces for deck views and export.
func (r *deckCardRepository) ListWithCards(ctx context.Context, deckID int64) ([]*models.DeckCard, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var cards []*models.DeckCard
	err := r.GetDB().NewSelect().
		Model(&cards).
		Relation("Card").
		Relation("Card.Faces").
		Where("dc.deck_id = ?", deckID).
		Scan(timeoutCtx)
	if err != nil {
		return nil, r.HandleError("list_with_cards", "deck_card", err)
	}
	return cards, nil
}

// CountForDeck sums allocated copies in one zone, for capacity reporting.
func (r *deckCardRepository) CountForDeck(ctx context.Context, deckID int64, sideboard bool) (int, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var total int
	err := r.GetDB().NewSelect().
		Model((*models.DeckCard)(nil)).
		ColumnExpr("COALESCE(SUM(quantity), 0)").
		Where("deck_id = ?", deckID).
		Where("sideboard = ?", sideboard).
		Scan(timeoutCtx, &total)
	if err != nil {
		return 0, r.HandleError("count_for_deck", "deck_card", err)
	}
	return total, nil
}

func (r *deckCardRepository) DeleteForDeck(ctx context.Context, db bun.IDB, deckID int64) error {
	_, err := db.NewDelete().
		Model((*models.DeckCard)(nil)).
		Where("deck_id = ?", deckID).
		Exec(ctx)
	return r.HandleError("delete_for_deck", "deck_card", err)
}
