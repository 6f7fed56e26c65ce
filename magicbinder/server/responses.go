package server

import (
	"net/http"
	"time"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/abrams/magicbinder/magicbinder/search"
	"github.com/abrams/magicbinder/magicbinder/services"
	"github.com/gofiber/fiber/v2"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(http.StatusOK).JSON(&APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(http.StatusCreated).JSON(&APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func SendError(c *fiber.Ctx, statusCode int, code, message string) error {
	return c.Status(statusCode).JSON(&APIResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}

// Wire DTOs. Models stay bun-tagged only; the JSON shape is owned here.

type faceJSON struct {
	FaceIndex  int      `json:"faceIndex"`
	Name       string   `json:"name"`
	ManaCost   string   `json:"manaCost"`
	CMC        float64  `json:"cmc"`
	TypeLine   string   `json:"typeLine"`
	OracleText string   `json:"oracleText"`
	Colors     []string `json:"colors,omitempty"`
	Power      string   `json:"power,omitempty"`
	Toughness  string   `json:"toughness,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

type cardJSON struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	SetCode         string     `json:"setCode"`
	CollectorNumber string     `json:"collectorNumber,omitempty"`
	Rarity          string     `json:"rarity"`
	Layout          string     `json:"layout"`
	Faces           []faceJSON `json:"faces"`
}

type searchItemJSON struct {
	cardJSON
	Owned int `json:"owned"`
}

type searchPageJSON struct {
	Items      []searchItemJSON `json:"items"`
	TotalPages int              `json:"totalPages"`
}

type sessionStateJSON struct {
	ID         string           `json:"id"`
	Query      string           `json:"query"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
	Loading    bool             `json:"loading"`
	Items      []searchItemJSON `json:"items"`
}

type deckJSON struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	Name        string `json:"name"`
	Format      string `json:"format,omitempty"`
	Notes       string `json:"notes,omitempty"`
	MaxCapacity int    `json:"maxCapacity"`
}

type deckCardJSON struct {
	cardJSON
	Quantity  int  `json:"quantity"`
	Sideboard bool `json:"isSideboard"`
}

type deckViewJSON struct {
	deckJSON
	Main           []deckCardJSON `json:"main"`
	Sideboard      []deckCardJSON `json:"sideboard"`
	MainCount      int            `json:"mainCount"`
	SideboardCount int            `json:"sideboardCount"`
}

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func toCardJSON(card *models.Card) cardJSON {
	out := cardJSON{
		ID:              card.ID.String(),
		Name:            card.Name,
		SetCode:         card.SetCode,
		CollectorNumber: card.CollectorNumber,
		Rarity:          card.Rarity,
		Layout:          card.Layout,
		Faces:           make([]faceJSON, 0, len(card.Faces)),
	}
	for _, f := range card.Faces {
		out.Faces = append(out.Faces, faceJSON{
			FaceIndex:  f.FaceIndex,
			Name:       f.Name,
			ManaCost:   f.ManaCost,
			CMC:        f.CMC,
			TypeLine:   f.TypeLine,
			OracleText: f.OracleText,
			Colors:     f.Colors,
			Power:      f.Power,
			Toughness:  f.Toughness,
			ImageURL:   f.ImageURL,
		})
	}
	return out
}

func toSearchItems(items []search.Item) []searchItemJSON {
	out := make([]searchItemJSON, 0, len(items))
	for _, item := range items {
		if item.Card == nil {
			continue
		}
		out = append(out, searchItemJSON{cardJSON: toCardJSON(item.Card), Owned: item.Owned})
	}
	return out
}

func toSearchPageJSON(page search.Page) searchPageJSON {
	return searchPageJSON{Items: toSearchItems(page.Items), TotalPages: page.TotalPages}
}

func toSessionStateJSON(id string, state search.State) sessionStateJSON {
	return sessionStateJSON{
		ID:         id,
		Query:      state.Query,
		Page:       state.Page,
		PageSize:   state.PageSize,
		TotalPages: state.TotalPages,
		Loading:    state.Loading,
		Items:      toSearchItems(state.Items),
	}
}

func toDeckJSON(deck *models.Deck) deckJSON {
	return deckJSON{
		ID:          deck.ID,
		UserID:      deck.UserID,
		Name:        deck.Name,
		Format:      deck.Format,
		Notes:       deck.Notes,
		MaxCapacity: deck.MaxCapacity,
	}
}

func toDeckCards(rows []*models.DeckCard) []deckCardJSON {
	out := make([]deckCardJSON, 0, len(rows))
	for _, row := range rows {
		entry := deckCardJSON{Quantity: row.Quantity, Sideboard: row.Sideboard}
		if row.Card != nil {
			entry.cardJSON = toCardJSON(row.Card)
		} else {
			entry.ID = row.CardID.String()
		}
		out = append(out, entry)
	}
	return out
}

func toDeckViewJSON(view *services.DeckView) deckViewJSON {
	return deckViewJSON{
		deckJSON:       toDeckJSON(view.Deck),
		Main:           toDeckCards(view.Main),
		Sideboard:      toDeckCards(view.Sideboard),
		MainCount:      view.MainCount,
		SideboardCount: view.SideboardCount,
	}
}
