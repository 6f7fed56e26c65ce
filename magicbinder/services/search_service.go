package services

import (
	"context"
	"strings"

	"github.com/abrams/magicbinder/magicbinder/config"
	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/abrams/magicbinder/magicbinder/inventory"
	"github.com/abrams/magicbinder/magicbinder/search"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

const suggestionCandidateLimit = 200

// SearchService runs compiled queries against the catalog and binders and
// owns the stateful search sessions.
type SearchService struct {
	cards    repositories.CardRepository
	binder   repositories.BinderRepository
	owned    *inventory.OwnershipCache
	sessions *search.Manager
}

func NewSearchService(cards repositories.CardRepository, binder repositories.BinderRepository, owned *inventory.OwnershipCache, sessions *search.Manager) *SearchService {
	return &SearchService{cards: cards, binder: binder, owned: owned, sessions: sessions}
}

func filtersFromQuery(q search.ParsedQuery) repositories.CardFilters {
	return repositories.CardFilters{
		Name:       q.Name,
		Rarity:     q.Rarity,
		SetCode:    q.SetCode,
		OracleText: q.OracleText,
		TypeLine:   q.TypeLine,
		ManaValue:  q.ManaValue,
	}
}

func totalPageCount(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// CatalogFetcher searches the whole catalog, annotating each hit with the
// user's confirmed owned quantity. userID zero skips annotation.
func (s *SearchService) CatalogFetcher(userID int64) search.Fetcher {
	return func(ctx context.Context, q search.ParsedQuery, page, pageSize int) (search.Page, error) {
		cards, total, err := s.cards.Search(ctx, filtersFromQuery(q), page*pageSize, pageSize)
		if err != nil {
			return search.Page{}, err
		}
		items, err := s.annotate(ctx, userID, cards)
		if err != nil {
			return search.Page{}, err
		}
		return search.Page{Items: items, TotalPages: totalPageCount(total, pageSize)}, nil
	}
}

// BinderFetcher searches only cards the user holds unallocated copies of.
func (s *SearchService) BinderFetcher(userID int64) search.Fetcher {
	return func(ctx context.Context, q search.ParsedQuery, page, pageSize int) (search.Page, error) {
		entries, total, err := s.binder.Search(ctx, userID, filtersFromQuery(q), page*pageSize, pageSize)
		if err != nil {
			return search.Page{}, err
		}
		items := make([]search.Item, len(entries))
		for i, e := range entries {
			items[i] = search.Item{Card: e.Card, Owned: e.Quantity}
			s.owned.Put(userID, e.CardID, e.Quantity)
		}
		return search.Page{Items: items, TotalPages: totalPageCount(total, pageSize)}, nil
	}
}

func (s *SearchService) annotate(ctx context.Context, userID int64, cards []*models.Card) ([]search.Item, error) {
	items := make([]search.Item, len(cards))
	for i, c := range cards {
		items[i] = search.Item{Card: c}
	}
	if userID == 0 {
		return items, nil
	}

	var missing []uuid.UUID
	for i, c := range cards {
		if qty, ok := s.owned.Get(userID, c.ID); ok {
			items[i].Owned = qty
		} else {
			missing = append(missing, c.ID)
		}
	}
	if len(missing) == 0 {
		return items, nil
	}

	quantities, err := s.binder.QuantitiesFor(ctx, userID, missing)
	if err != nil {
		return nil, err
	}
	missed := make(map[uuid.UUID]bool, len(missing))
	for _, id := range missing {
		missed[id] = true
	}
	for i, c := range cards {
		if !missed[c.ID] {
			continue
		}
		qty := quantities[c.ID]
		items[i].Owned = qty
		s.owned.Put(userID, c.ID, qty)
	}
	return items, nil
}

func clampPaging(page, pageSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > config.MaxPageSize {
		pageSize = config.DefaultPageSize
	}
	return page, pageSize
}

// SearchCatalog is the stateless one-shot path: compile, fetch, return.
func (s *SearchService) SearchCatalog(ctx context.Context, userID int64, raw string, page, pageSize int) (search.Page, error) {
	page, pageSize = clampPaging(page, pageSize)
	return s.CatalogFetcher(userID)(ctx, search.Compile(raw), page, pageSize)
}

func (s *SearchService) SearchBinder(ctx context.Context, userID int64, raw string, page, pageSize int) (search.Page, error) {
	page, pageSize = clampPaging(page, pageSize)
	return s.BinderFetcher(userID)(ctx, search.Compile(raw), page, pageSize)
}

// OpenSession creates a stateful session scoped to the catalog or to one
// user's binder and returns its id.
func (s *SearchService) OpenSession(userID int64, scope string, pageSize int) (string, error) {
	_, pageSize = clampPaging(0, pageSize)

	var fetch search.Fetcher
	switch scope {
	case "", "catalog":
		fetch = s.CatalogFetcher(userID)
	case "binder":
		fetch = s.BinderFetcher(userID)
	default:
		return "", &inventory.InvalidInputError{Field: "scope", Reason: "must be catalog or binder"}
	}

	id, _ := s.sessions.Open(fetch, pageSize)
	return id, nil
}

func (s *SearchService) Session(id string) (*search.Session, bool) {
	return s.sessions.Get(id)
}

func (s *SearchService) CloseSession(id string) {
	s.sessions.Close(id)
}

// SuggestNames returns card names ranked by fuzzy match quality against the
// fragment. Candidates come from a substring preselect so the ranking set
// stays small.
func (s *SearchService) SuggestNames(ctx context.Context, fragment string, limit int) ([]string, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	candidates, err := s.cards.NamesMatching(ctx, fragment, suggestionCandidateLimit)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.Find(fragment, candidates)
	names := make([]string, 0, limit)
	for _, m := range matches {
		names = append(names, m.Str)
		if len(names) == limit {
			break
		}
	}
	return names, nil
}
