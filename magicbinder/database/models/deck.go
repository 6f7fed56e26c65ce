package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const DefaultDeckCapacity = 60

type Deck struct {
	bun.BaseModel `bun:"table:decks,alias:d"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      int64     `bun:"user_id,notnull"`
	Name        string    `bun:"name,notnull"`
	Format      string    `bun:"format,notnull,default:''"`
	Notes       string    `bun:"notes,type:text,notnull,default:''"`
	MaxCapacity int       `bun:"max_capacity,notnull,default:60"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

// DeckCard allocates copies of a card to one zone of a deck. At most one
// row exists per (deck, card, sideboard); quantity is always >= 1.
type DeckCard struct {
	bun.BaseModel `bun:"table:deck_cards,alias:dc"`

	ID        int64     `bun:"id,pk,autoincrement"`
	DeckID    int64     `bun:"deck_id,notnull"`
	CardID    uuid.UUID `bun:"card_id,type:uuid,notnull"`
	Sideboard bool      `bun:"sideboard,notnull,default:false"`
	Quantity  int       `bun:"quantity,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	// Relations
	Card *Card `bun:"rel:belongs-to,join:card_id=id"`
}
