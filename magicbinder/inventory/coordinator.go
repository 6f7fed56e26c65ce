package inventory

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Database is the transaction boundary the coordinator needs. *bun.DB
// satisfies it.
type Database interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error
}

// BinderStore mutates unallocated owned copies inside a caller transaction.
type BinderStore interface {
	Quantity(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID) (int, error)
	Add(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error
	Remove(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error
}

type DeckStore interface {
	Get(ctx context.Context, db bun.IDB, deckID int64) (*models.Deck, error)
	Delete(ctx context.Context, db bun.IDB, deckID int64) error
}

// AllocationStore mutates deck zone rows inside a caller transaction.
type AllocationStore interface {
	Quantity(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, sideboard bool) (int, error)
	SetQuantity(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, sideboard bool, quantity int) error
	MoveZone(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, fromSideboard bool, amount int) error
	ListForDeck(ctx context.Context, db bun.IDB, deckID int64) ([]*models.DeckCard, error)
	DeleteForDeck(ctx context.Context, db bun.IDB, deckID int64) error
}

var txOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}

// Coordinator moves copies between a user's binder and their deck zones.
// Total owned quantity per (user, card) is conserved by every operation:
// each runs in one serializable transaction with all checks before any
// write, so a failed operation leaves no partial state. Mutations are
// attempted at most once; retry policy belongs to the caller.
type Coordinator struct {
	db     Database
	binder BinderStore
	decks  DeckStore
	allocs AllocationStore
	owned  *OwnershipCache
}

func NewCoordinator(db Database, binder BinderStore, decks DeckStore, allocs AllocationStore, owned *OwnershipCache) *Coordinator {
	return &Coordinator{
		db:     db,
		binder: binder,
		decks:  decks,
		allocs: allocs,
		owned:  owned,
	}
}

// AddToDeck debits amount copies from the user's binder and credits the
// deck zone, merging into an existing allocation row.
func (c *Coordinator) AddToDeck(ctx context.Context, userID, deckID int64, cardID uuid.UUID, amount int, sideboard bool) error {
	if amount <= 0 {
		return &InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	err := c.db.RunInTx(ctx, txOptions, func(ctx context.Context, tx bun.Tx) error {
		if _, err := c.ownedDeck(ctx, tx, userID, deckID); err != nil {
			return err
		}

		available, err := c.binder.Quantity(ctx, tx, userID, cardID)
		if err != nil {
			return err
		}
		if available < amount {
			return &NotOwnedError{UserID: userID, CardID: cardID, Requested: amount, Available: available}
		}

		if err := c.binder.Remove(ctx, tx, userID, cardID, amount); err != nil {
			return err
		}
		current, err := c.allocs.Quantity(ctx, tx, deckID, cardID, sideboard)
		if err != nil {
			return err
		}
		return c.allocs.SetQuantity(ctx, tx, deckID, cardID, sideboard, current+amount)
	})
	if err != nil {
		return classify(err)
	}

	c.owned.Invalidate(userID, cardID)
	slog.Debug("added to deck",
		slog.Int64("user_id", userID),
		slog.Int64("deck_id", deckID),
		slog.String("card_id", cardID.String()),
		slog.Int("amount", amount),
		slog.Bool("sideboard", sideboard))
	return nil
}

// RemoveFromDeck debits amount copies from the deck zone and credits them
// back to the owner's binder.
func (c *Coordinator) RemoveFromDeck(ctx context.Context, userID, deckID int64, cardID uuid.UUID, amount int, sideboard bool) error {
	if amount <= 0 {
		return &InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	err := c.db.RunInTx(ctx, txOptions, func(ctx context.Context, tx bun.Tx) error {
		if _, err := c.ownedDeck(ctx, tx, userID, deckID); err != nil {
			return err
		}

		current, err := c.allocs.Quantity(ctx, tx, deckID, cardID, sideboard)
		if err != nil {
			return err
		}
		if current < amount {
			return &InsufficientQuantityError{DeckID: deckID, CardID: cardID, Sideboard: sideboard,
				Requested: amount, Available: current}
		}

		if err := c.allocs.SetQuantity(ctx, tx, deckID, cardID, sideboard, current-amount); err != nil {
			return err
		}
		return c.binder.Add(ctx, tx, userID, cardID, amount)
	})
	if err != nil {
		return classify(err)
	}

	c.owned.Invalidate(userID, cardID)
	return nil
}

// MoveZone moves amount copies of a card from one zone of the deck into the
// other, merging with any copies already there. The binder is untouched.
func (c *Coordinator) MoveZone(ctx context.Context, userID, deckID int64, cardID uuid.UUID, fromSideboard bool, amount int) error {
	if amount <= 0 {
		return &InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	err := c.db.RunInTx(ctx, txOptions, func(ctx context.Context, tx bun.Tx) error {
		if _, err := c.ownedDeck(ctx, tx, userID, deckID); err != nil {
			return err
		}

		source, err := c.allocs.Quantity(ctx, tx, deckID, cardID, fromSideboard)
		if err != nil {
			return err
		}
		if source < amount {
			return &InsufficientQuantityError{DeckID: deckID, CardID: cardID, Sideboard: fromSideboard,
				Requested: amount, Available: source}
		}

		return c.allocs.MoveZone(ctx, tx, deckID, cardID, fromSideboard, amount)
	})
	return classify(err)
}

// MoveSideboard moves the entire allocation of a card from one zone of the
// deck to the other, merging with any copies already there. The binder is
// untouched.
func (c *Coordinator) MoveSideboard(ctx context.Context, userID, deckID int64, cardID uuid.UUID, toSideboard bool) error {
	err := c.db.RunInTx(ctx, txOptions, func(ctx context.Context, tx bun.Tx) error {
		if _, err := c.ownedDeck(ctx, tx, userID, deckID); err != nil {
			return err
		}

		moving, err := c.allocs.Quantity(ctx, tx, deckID, cardID, !toSideboard)
		if err != nil {
			return err
		}
		if moving == 0 {
			return &repositories.NotFoundError{Entity: "deck card", ID: cardID}
		}

		return c.allocs.MoveZone(ctx, tx, deckID, cardID, !toSideboard, moving)
	})
	return classify(err)
}

// TransferBetweenDecks moves copies between the main zones of two decks
// owned by the same user. The binder is untouched.
func (c *Coordinator) TransferBetweenDecks(ctx context.Context, userID, sourceDeckID, destDeckID int64, cardID uuid.UUID, amount int) error {
	if amount <= 0 {
		return &InvalidInputError{Field: "amount", Reason: "must be positive"}
	}
	if sourceDeckID == destDeckID {
		return &InvalidInputError{Field: "deck", Reason: "source and destination decks are the same"}
	}

	err := c.db.RunInTx(ctx, txOptions, func(ctx context.Context, tx bun.Tx) error {
		if _, err := c.ownedDeck(ctx, tx, userID, sourceDeckID); err != nil {
			return err
		}
		if _, err := c.ownedDeck(ctx, tx, userID, destDeckID); err != nil {
			return err
		}

		sourceQty, err := c.allocs.Quantity(ctx, tx, sourceDeckID, cardID, false)
		if err != nil {
			return err
		}
		if sourceQty < amount {
			return &InsufficientQuantityError{DeckID: sourceDeckID, CardID: cardID,
				Requested: amount, Available: sourceQty}
		}

		if err := c.allocs.SetQuantity(ctx, tx, sourceDeckID, cardID, false, sourceQty-amount); err != nil {
			return err
		}
		destQty, err := c.allocs.Quantity(ctx, tx, destDeckID, cardID, false)
		if err != nil {
			return err
		}
		return c.allocs.SetQuantity(ctx, tx, destDeckID, cardID, false, destQty+amount)
	})
	if err != nil {
		return classify(err)
	}

	slog.Debug("transferred between decks",
		slog.Int64("source_deck_id", sourceDeckID),
		slog.Int64("dest_deck_id", destDeckID),
		slog.String("card_id", cardID.String()),
		slog.Int("amount", amount))
	return nil
}

// DeleteDeck removes the deck after crediting every allocated copy, both
// zones, back to the owner's binder.
func (c *Coordinator) DeleteDeck(ctx context.Context, userID, deckID int64) error {
	var returned []*models.DeckCard

	err := c.db.RunInTx(ctx, txOptions, func(ctx context.Context, tx bun.Tx) error {
		if _, err := c.ownedDeck(ctx, tx, userID, deckID); err != nil {
			return err
		}

		rows, err := c.allocs.ListForDeck(ctx, tx, deckID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := c.binder.Add(ctx, tx, userID, row.CardID, row.Quantity); err != nil {
				return err
			}
		}
		if err := c.allocs.DeleteForDeck(ctx, tx, deckID); err != nil {
			return err
		}
		if err := c.decks.Delete(ctx, tx, deckID); err != nil {
			return err
		}
		returned = rows
		return nil
	})
	if err != nil {
		return classify(err)
	}

	for _, row := range returned {
		c.owned.Invalidate(userID, row.CardID)
	}
	slog.Info("deck deleted, allocations returned to binder",
		slog.Int64("user_id", userID),
		slog.Int64("deck_id", deckID),
		slog.Int("rows_returned", len(returned)))
	return nil
}

// ownedDeck loads the deck and hides its existence from non-owners.
func (c *Coordinator) ownedDeck(ctx context.Context, tx bun.Tx, userID, deckID int64) (*models.Deck, error) {
	deck, err := c.decks.Get(ctx, tx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.UserID != userID {
		return nil, &repositories.NotFoundError{Entity: "deck", ID: deckID}
	}
	return deck, nil
}
