package services

import (
	"context"
	"testing"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/abrams/magicbinder/magicbinder/database/repositories/mock"
	"github.com/abrams/magicbinder/magicbinder/inventory"
	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

var (
	boltID   = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	dragonID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
)

func newOwnershipCache(t *testing.T) *inventory.OwnershipCache {
	t.Helper()
	cache, err := inventory.NewOwnershipCache(64)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	return cache
}

func TestSearchCatalogAnnotatesOwnership(t *testing.T) {
	ctrl := gomock.NewController(t)
	cards := mock.NewMockCardRepository(ctrl)
	binder := mock.NewMockBinderRepository(ctrl)

	catalog := []*models.Card{
		{ID: boltID, Name: "Lightning Bolt"},
		{ID: dragonID, Name: "Shivan Dragon"},
	}
	wantFilters := repositories.CardFilters{Name: "dragon", Rarity: "mythic"}

	cards.EXPECT().
		Search(gomock.Any(), wantFilters, 0, 20).
		Return(catalog, 35, nil).
		Times(2)
	// Ownership is read once; the second search hits the cache.
	binder.EXPECT().
		QuantitiesFor(gomock.Any(), int64(7), gomock.Any()).
		Return(map[uuid.UUID]int{boltID: 3}, nil).
		Times(1)

	s := NewSearchService(cards, binder, newOwnershipCache(t), nil)

	for run := 0; run < 2; run++ {
		page, err := s.SearchCatalog(context.Background(), 7, "dragon r:mythic", 0, 20)
		if err != nil {
			t.Fatalf("run %d: SearchCatalog: %v", run, err)
		}
		if page.TotalPages != 2 {
			t.Errorf("run %d: total pages = %d, want 2", run, page.TotalPages)
		}
		if len(page.Items) != 2 {
			t.Fatalf("run %d: items = %d, want 2", run, len(page.Items))
		}
		if page.Items[0].Owned != 3 {
			t.Errorf("run %d: bolt owned = %d, want 3", run, page.Items[0].Owned)
		}
		if page.Items[1].Owned != 0 {
			t.Errorf("run %d: dragon owned = %d, want 0", run, page.Items[1].Owned)
		}
	}
}

func TestSearchCatalogAnonymousSkipsAnnotation(t *testing.T) {
	ctrl := gomock.NewController(t)
	cards := mock.NewMockCardRepository(ctrl)
	binder := mock.NewMockBinderRepository(ctrl)

	cards.EXPECT().
		Search(gomock.Any(), gomock.Any(), 0, 20).
		Return([]*models.Card{{ID: boltID, Name: "Lightning Bolt"}}, 1, nil)

	s := NewSearchService(cards, binder, newOwnershipCache(t), nil)
	page, err := s.SearchCatalog(context.Background(), 0, "bolt", 0, 20)
	if err != nil {
		t.Fatalf("SearchCatalog: %v", err)
	}
	if page.Items[0].Owned != 0 {
		t.Errorf("owned = %d, want 0 for anonymous search", page.Items[0].Owned)
	}
}

func TestSearchBinderUsesEntryQuantities(t *testing.T) {
	ctrl := gomock.NewController(t)
	cards := mock.NewMockCardRepository(ctrl)
	binder := mock.NewMockBinderRepository(ctrl)

	entries := []*models.BinderEntry{
		{CardID: boltID, Quantity: 4, Card: &models.Card{ID: boltID, Name: "Lightning Bolt"}},
	}
	binder.EXPECT().
		Search(gomock.Any(), int64(7), gomock.Any(), 20, 20).
		Return(entries, 21, nil)

	s := NewSearchService(cards, binder, newOwnershipCache(t), nil)
	page, err := s.SearchBinder(context.Background(), 7, "", 1, 20)
	if err != nil {
		t.Fatalf("SearchBinder: %v", err)
	}
	if page.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", page.TotalPages)
	}
	if page.Items[0].Owned != 4 {
		t.Errorf("owned = %d, want 4", page.Items[0].Owned)
	}
}

func TestSuggestNames(t *testing.T) {
	ctrl := gomock.NewController(t)
	cards := mock.NewMockCardRepository(ctrl)
	binder := mock.NewMockBinderRepository(ctrl)

	cards.EXPECT().
		NamesMatching(gomock.Any(), "bolt", suggestionCandidateLimit).
		Return([]string{"Lightning Bolt", "Boltwing Marauder", "Firebolt"}, nil)

	s := NewSearchService(cards, binder, newOwnershipCache(t), nil)
	names, err := s.SuggestNames(context.Background(), "bolt", 2)
	if err != nil {
		t.Fatalf("SuggestNames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("suggestions = %v, want 2 entries", names)
	}
	for _, name := range names {
		switch name {
		case "Lightning Bolt", "Boltwing Marauder", "Firebolt":
		default:
			t.Errorf("unexpected suggestion %q", name)
		}
	}
}

func TestSuggestNamesEmptyFragment(t *testing.T) {
	ctrl := gomock.NewController(t)
	cards := mock.NewMockCardRepository(ctrl)
	binder := mock.NewMockBinderRepository(ctrl)

	s := NewSearchService(cards, binder, newOwnershipCache(t), nil)
	names, err := s.SuggestNames(context.Background(), "   ", 5)
	if err != nil {
		t.Fatalf("SuggestNames: %v", err)
	}
	if names != nil {
		t.Errorf("suggestions = %v, want none", names)
	}
}
