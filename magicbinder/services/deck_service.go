package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/abrams/magicbinder/magicbinder/inventory"
)

// DeckService manages deck metadata and read views. Anything that moves
// copies between binder and zones goes through the coordinator.
type DeckService struct {
	decks     repositories.DeckRepository
	deckCards repositories.DeckCardRepository
	coord     *inventory.Coordinator
}

func NewDeckService(decks repositories.DeckRepository, deckCards repositories.DeckCardRepository, coord *inventory.Coordinator) *DeckService {
	return &DeckService{decks: decks, deckCards: deckCards, coord: coord}
}

// DeckView is a deck with its allocations split by zone, name-sorted.
// Counts sum quantities, not distinct cards; MaxCapacity is advisory and
// the view just reports how full the deck is.
type DeckView struct {
	Deck           *models.Deck
	Main           []*models.DeckCard
	Sideboard      []*models.DeckCard
	MainCount      int
	SideboardCount int
}

func (s *DeckService) CreateDeck(ctx context.Context, userID int64, name, format, notes string, maxCapacity int) (*models.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &inventory.InvalidInputError{Field: "name", Reason: "cannot be empty"}
	}
	if maxCapacity < 0 {
		return nil, &inventory.InvalidInputError{Field: "max_capacity", Reason: "cannot be negative"}
	}

	deck := &models.Deck{
		UserID:      userID,
		Name:        name,
		Format:      format,
		Notes:       notes,
		MaxCapacity: maxCapacity,
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

func (s *DeckService) UpdateDeck(ctx context.Context, userID, deckID int64, name, format, notes string, maxCapacity int) (*models.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &inventory.InvalidInputError{Field: "name", Reason: "cannot be empty"}
	}
	if maxCapacity < 0 {
		return nil, &inventory.InvalidInputError{Field: "max_capacity", Reason: "cannot be negative"}
	}

	deck, err := s.ownedDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	deck.Name = name
	deck.Format = format
	deck.Notes = notes
	if maxCapacity > 0 {
		deck.MaxCapacity = maxCapacity
	}
	if err := s.decks.Update(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

func (s *DeckService) ListDecks(ctx context.Context, userID int64) ([]*models.Deck, error) {
	return s.decks.GetUserDecks(ctx, userID)
}

func (s *DeckService) GetDeck(ctx context.Context, userID, deckID int64) (*DeckView, error) {
	deck, err := s.ownedDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	rows, err := s.deckCards.ListWithCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return buildDeckView(deck, rows), nil
}

func (s *DeckService) DeleteDeck(ctx context.Context, userID, deckID int64) error {
	return s.coord.DeleteDeck(ctx, userID, deckID)
}

// Export renders the deck as a plain-text list, one "quantity name" line
// per card, main zone first.
func (s *DeckService) Export(ctx context.Context, userID, deckID int64) (string, error) {
	view, err := s.GetDeck(ctx, userID, deckID)
	if err != nil {
		return "", err
	}
	return BuildDeckList(view), nil
}

func (s *DeckService) ownedDeck(ctx context.Context, userID, deckID int64) (*models.Deck, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.UserID != userID {
		return nil, &repositories.NotFoundError{Entity: "deck", ID: deckID}
	}
	return deck, nil
}

func buildDeckView(deck *models.Deck, rows []*models.DeckCard) *DeckView {
	view := &DeckView{Deck: deck}
	for _, row := range rows {
		if row.Sideboard {
			view.Sideboard = append(view.Sideboard, row)
			view.SideboardCount += row.Quantity
		} else {
			view.Main = append(view.Main, row)
			view.MainCount += row.Quantity
		}
	}
	sortByName(view.Main)
	sortByName(view.Sideboard)
	return view
}

func sortByName(rows []*models.DeckCard) {
	sort.Slice(rows, func(i, j int) bool {
		return rowName(rows[i]) < rowName(rows[j])
	})
}

func rowName(row *models.DeckCard) string {
	if row.Card != nil {
		return row.Card.Name
	}
	return row.CardID.String()
}

// BuildDeckList is the text export format: main zone lines, then a blank
// line and a Sideboard header when the sideboard is non-empty.
func BuildDeckList(view *DeckView) string {
	var b strings.Builder
	for _, row := range view.Main {
		fmt.Fprintf(&b, "%d %s\n", row.Quantity, rowName(row))
	}
	if len(view.Sideboard) > 0 {
		if len(view.Main) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Sideboard\n")
		for _, row := range view.Sideboard {
			fmt.Fprintf(&b, "%d %s\n", row.Quantity, rowName(row))
		}
	}
	return b.String()
}
