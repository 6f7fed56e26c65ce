package repositories

import (
	"context"
	"strings"

	"github.com/abrams/magicbinder/magicbinder/config"
	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CardFilters are the structured constraints a compiled query produces.
// Empty string fields match everything; ManaValue nil means no cmc bound.
type CardFilters struct {
	Name       string
	Rarity     string
	SetCode    string
	OracleText string
	TypeLine   string
	ManaValue  *int
}

type CardRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error)
	Search(ctx context.Context, filters CardFilters, offset, limit int) ([]*models.Card, int, error)
	NamesMatching(ctx context.Context, fragment string, limit int) ([]string, error)
	UpsertBatch(ctx context.Context, cards []*models.Card, faces []*models.CardFace) error
}

type cardRepository struct {
	*BaseRepository
}

func NewCardRepository(db *bun.DB) CardRepository {
	return &cardRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *cardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	card := new(models.Card)
	err := r.GetDB().NewSelect().
		Model(card).
		Relation("Faces").
		Where("c.id = ?", id).
		Scan(timeoutCtx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "card", id, err)
	}
	return card, nil
}

// Search pages through the catalog. Filters combine with AND; face-level
// filters match a card when any of its faces matches.
func (r *cardRepository) Search(ctx context.Context, filters CardFilters, offset, limit int) ([]*models.Card, int, error) {
	timeoutCtx, cancel := r.WithCustomTimeout(ctx, config.SearchTimeout)
	defer cancel()

	var cards []*models.Card
	query := r.GetDB().NewSelect().
		Model(&cards).
		Relation("Faces")
	query = applyCardFilters(query, filters)

	total, err := query.Count(timeoutCtx)
	if err != nil {
		return nil, 0, r.HandleError("search", "card", err)
	}

	err = query.
		OrderExpr("c.name ASC, c.set_code ASC, c.collector_number ASC").
		Offset(offset).
		Limit(limit).
		Scan(timeoutCtx)
	if err != nil {
		return nil, 0, r.HandleError("search", "card", err)
	}
	return cards, total, nil
}

// NamesMatching returns distinct card names containing the fragment, as
// candidates for fuzzy re-ranking.
func (r *cardRepository) NamesMatching(ctx context.Context, fragment string, limit int) ([]string, error) {
	timeoutCtx, cancel := r.WithCustomTimeout(ctx, config.SearchTimeout)
	defer cancel()

	var names []string
	err := r.GetDB().NewSelect().
		Model((*models.Card)(nil)).
		ColumnExpr("DISTINCT c.name").
		Where("LOWER(c.name) LIKE ?", "%"+strings.ToLower(fragment)+"%").
		OrderExpr("c.name ASC").
		Limit(limit).
		Scan(timeoutCtx, &names)
	if err != nil {
		return nil, r.HandleError("names_matching", "card", err)
	}
	return names, nil
}

// UpsertBatch replaces catalog rows for the given printings. Faces are
// re-created wholesale because face counts can change between catalog dumps.
func (r *cardRepository) UpsertBatch(ctx context.Context, cards []*models.Card, faces []*models.CardFace) error {
	if len(cards) == 0 {
		return nil
	}

	timeoutCtx, cancel := r.WithCustomTimeout(ctx, config.BatchQueryTimeout)
	defer cancel()

	return r.Transaction(timeoutCtx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&cards).
			On("CONFLICT (id) DO UPDATE").
			Set("oracle_id = EXCLUDED.oracle_id").
			Set("name = EXCLUDED.name").
			Set("set_code = EXCLUDED.set_code").
			Set("collector_number = EXCLUDED.collector_number").
			Set("rarity = EXCLUDED.rarity").
			Set("layout = EXCLUDED.layout").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return r.HandleError("upsert_batch", "card", err)
		}

		ids := make([]uuid.UUID, len(cards))
		for i, c := range cards {
			ids[i] = c.ID
		}
		_, err = tx.NewDelete().
			Model((*models.CardFace)(nil)).
			Where("card_id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return r.HandleError("upsert_batch", "card_face", err)
		}

		if len(faces) > 0 {
			if _, err := tx.NewInsert().Model(&faces).Exec(ctx); err != nil {
				return r.HandleError("upsert_batch", "card_face", err)
			}
		}
		return nil
	})
}

// applyCardFilters ANDs the structured constraints onto a query whose card
// table is aliased c. Text matches are case-insensitive substring matches.
func applyCardFilters(q *bun.SelectQuery, f CardFilters) *bun.SelectQuery {
	if f.Name != "" {
		q = q.Where("LOWER(c.name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Rarity != "" {
		q = q.Where("LOWER(c.rarity) = ?", strings.ToLower(f.Rarity))
	}
	if f.SetCode != "" {
		q = q.Where("LOWER(c.set_code) = ?", strings.ToLower(f.SetCode))
	}
	if f.OracleText != "" {
		q = q.Where("EXISTS (SELECT 1 FROM card_faces AS cf WHERE cf.card_id = c.id AND LOWER(cf.oracle_text) LIKE ?)",
			"%"+strings.ToLower(f.OracleText)+"%")
	}
	if f.TypeLine != "" {
		q = q.Where("EXISTS (SELECT 1 FROM card_faces AS cf WHERE cf.card_id = c.id AND LOWER(cf.type_line) LIKE ?)",
			"%"+strings.ToLower(f.TypeLine)+"%")
	}
	if f.ManaValue != nil {
		q = q.Where("EXISTS (SELECT 1 FROM card_faces AS cf WHERE cf.card_id = c.id AND cf.cmc = ?)", *f.ManaValue)
	}
	return q
}
