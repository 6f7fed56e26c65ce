package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abrams/magicbinder/magicbinder/config"
	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BinderRepository manages the unallocated copies each user owns. Methods
// taking a bun.IDB compose into caller-managed transactions; the coordinator
// relies on that for its conservation guarantees.
type BinderRepository interface {
	Quantity(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID) (int, error)
	Add(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error
	Remove(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error
	QuantitiesFor(ctx context.Context, userID int64, cardIDs []uuid.UUID) (map[uuid.UUID]int, error)
	Search(ctx context.Context, userID int64, filters CardFilters, offset, limit int) ([]*models.BinderEntry, int, error)
}

type binderRepository struct {
	*BaseRepository
}

func NewBinderRepository(db *bun.DB) BinderRepository {
	return &binderRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *binderRepository) Quantity(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID) (int, error) {
	entry := new(models.BinderEntry)
	err := db.NewSelect().
		Model(entry).
		Column("quantity").
		Where("user_id = ?", userID).
		Where("card_id = ?", cardID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, r.HandleError("quantity", "binder_entry", err)
	}
	return entry.Quantity, nil
}

// Add credits copies to the user's binder, creating the row when missing.
func (r *binderRepository) Add(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error {
	if amount <= 0 {
		return &RepositoryError{Operation: "add", Entity: "binder_entry",
			Err: fmt.Errorf("amount must be positive, got %d", amount)}
	}

	res, err := db.NewUpdate().
		Model((*models.BinderEntry)(nil)).
		Set("quantity = quantity + ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("card_id = ?", cardID).
		Exec(ctx)
	if err != nil {
		return r.HandleError("add", "binder_entry", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		entry := &models.BinderEntry{
			UserID:    userID,
			CardID:    cardID,
			Quantity:  amount,
			UpdatedAt: time.Now(),
		}
		if _, err := db.NewInsert().Model(entry).Exec(ctx); err != nil {
			return r.HandleError("add", "binder_entry", err)
		}
	}
	return nil
}

// Remove debits copies from the user's binder. The quantity guard in the
// WHERE clause keeps concurrent debits from driving the row negative; the
// emptied row is deleted so zero quantities are never stored.
func (r *binderRepository) Remove(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error {
	if amount <= 0 {
		return &RepositoryError{Operation: "remove", Entity: "binder_entry",
			Err: fmt.Errorf("amount must be positive, got %d", amount)}
	}

	res, err := db.NewUpdate().
		Model((*models.BinderEntry)(nil)).
		Set("quantity = quantity - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("card_id = ?", cardID).
		Where("quantity >= ?", amount).
		Exec(ctx)
	if err != nil {
		return r.HandleError("remove", "binder_entry", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		available, err := r.Quantity(ctx, db, userID, cardID)
		if err != nil {
			return err
		}
		return &InsufficientQuantityError{Entity: "binder_entry", Requested: amount, Available: available}
	}

	_, err = db.NewDelete().
		Model((*models.BinderEntry)(nil)).
		Where("user_id = ?", userID).
		Where("card_id = ?", cardID).
		Where("quantity <= 0").
		Exec(ctx)
	return r.HandleError("remove", "binder_entry", err)
}

// QuantitiesFor loads owned quantities for a batch of cards in one query.
// Cards the user does not own are absent from the result map.
func (r *binderRepository) QuantitiesFor(ctx context.Context, userID int64, cardIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(cardIDs))
	if len(cardIDs) == 0 {
		return out, nil
	}

	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var entries []*models.BinderEntry
	err := r.GetDB().NewSelect().
		Model(&entries).
		Column("card_id", "quantity").
		Where("user_id = ?", userID).
		Where("card_id IN (?)", bun.In(cardIDs)).
		Scan(timeoutCtx)
	if err != nil {
		return nil, r.HandleError("quantities_for", "binder_entry", err)
	}

	for _, e := range entries {
		out[e.CardID] = e.Quantity
	}
	return out, nil
}

// Search pages through the user's binder joined with the catalog, applying
// the same filters as a catalog search. Only cards with copies left in the
// binder appear.
func (r *binderRepository) Search(ctx context.Context, userID int64, filters CardFilters, offset, limit int) ([]*models.BinderEntry, int, error) {
	timeoutCtx, cancel := r.WithCustomTimeout(ctx, config.SearchTimeout)
	defer cancel()

	var entries []*models.BinderEntry
	query := r.GetDB().NewSelect().
		Model(&entries).
		Relation("Card").
		Relation("Card.Faces").
		Join("JOIN cards AS c ON c.id = be.card_id").
		Where("be.user_id = ?", userID)
	query = applyCardFilters(query, filters)

	total, err := query.Count(timeoutCtx)
	if err != nil {
		return nil, 0, r.HandleError("search", "binder_entry", err)
	}

	err = query.
		OrderExpr("c.name ASC, c.set_code ASC").
		Offset(offset).
		Limit(limit).
		Scan(timeoutCtx)
	if err != nil {
		return nil, 0, r.HandleError("search", "binder_entry", err)
	}
	return entries, total, nil
}
