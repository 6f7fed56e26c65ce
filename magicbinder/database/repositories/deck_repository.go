package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/uptrace/bun"
)

type DeckRepository interface {
	Get(ctx context.Context, db bun.IDB, deckID int64) (*models.Deck, error)
	GetByID(ctx context.Context, deckID int64) (*models.Deck, error)
	GetUserDecks(ctx context.Context, userID int64) ([]*models.Deck, error)
	Create(ctx context.Context, deck *models.Deck) error
	Update(ctx context.Context, deck *models.Deck) error
	Delete(ctx context.Context, db bun.IDB, deckID int64) error
}

type deckRepository struct {
	*BaseRepository
}

func NewDeckRepository(db *bun.DB) DeckRepository {
	return &deckRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *deckRepository) Get(ctx context.Context, db bun.IDB, deckID int64) (*models.Deck, error) {
	deck := new(models.Deck)
	err := db.NewSelect().
		Model(deck).
		Where("id = ?", deckID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "deck", ID: deckID}
	}
	if err != nil {
		return nil, r.HandleErrorWithID("get", "deck", deckID, err)
	}
	return deck, nil
}

func (r *deckRepository) GetByID(ctx context.Context, deckID int64) (*models.Deck, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()
	return r.Get(timeoutCtx, r.GetDB(), deckID)
}

func (r *deckRepository) GetUserDecks(ctx context.Context, userID int64) ([]*models.Deck, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var decks []*models.Deck
	err := r.GetDB().NewSelect().
		Model(&decks).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(timeoutCtx)
	if err != nil {
		return nil, r.HandleError("get_user_decks", "deck", err)
	}
	return decks, nil
}

func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	deck.CreatedAt = now
	deck.UpdatedAt = now
	if deck.MaxCapacity <= 0 {
		deck.MaxCapacity = models.DefaultDeckCapacity
	}

	_, err := r.GetDB().NewInsert().Model(deck).Exec(timeoutCtx)
	return r.HandleError("create", "deck", err)
}

func (r *deckRepository) Update(ctx context.Context, deck *models.Deck) error {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	deck.UpdatedAt = time.Now()
	res, err := r.GetDB().NewUpdate().
		Model(deck).
		Column("name", "format", "notes", "max_capacity", "updated_at").
		WherePK().
		Exec(timeoutCtx)
	if err != nil {
		return r.HandleErrorWithID("update", "deck", deck.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &NotFoundError{Entity: "deck", ID: deck.ID}
	}
	return nil
}

func (r *deckRepository) Delete(ctx context.Context, db bun.IDB, deckID int64) error {
	res, err := db.NewDelete().
		Model((*models.Deck)(nil)).
		Where("id = ?", deckID).
		Exec(ctx)
	if err != nil {
		return r.HandleErrorWithID("delete", "deck", deckID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &NotFoundError{Entity: "deck", ID: deckID}
	}
	return nil
}
