package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Card is one printing from the catalog. Catalog rows are written by the
// importer only; the inventory side never mutates them.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	OracleID        uuid.UUID `bun:"oracle_id,type:uuid,notnull"`
	Name            string    `bun:"name,notnull"`
	SetCode         string    `bun:"set_code,notnull"`
	CollectorNumber string    `bun:"collector_number,notnull,default:''"`
	Rarity          string    `bun:"rarity,notnull"`
	Layout          string    `bun:"layout,notnull,default:'normal'"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`

	// Relations
	Faces []*CardFace `bun:"rel:has-many,join:id=card_id"`
}

// Face returns the face at idx, or nil. Single-faced cards store one face.
func (c *Card) Face(idx int) *CardFace {
	for _, f := range c.Faces {
		if f.FaceIndex == idx {
			return f
		}
	}
	return nil
}

type CardFace struct {
	bun.BaseModel `bun:"table:card_faces,alias:cf"`

	ID         int64     `bun:"id,pk,autoincrement"`
	CardID     uuid.UUID `bun:"card_id,type:uuid,notnull"`
	FaceIndex  int       `bun:"face_index,notnull,default:0"`
	Name       string    `bun:"name,notnull"`
	ManaCost   string    `bun:"mana_cost,notnull,default:''"`
	CMC        float64   `bun:"cmc,notnull,default:0"`
	TypeLine   string    `bun:"type_line,notnull,default:''"`
	OracleText string    `bun:"oracle_text,type:text,notnull,default:''"`
	Colors     []string  `bun:"colors,type:jsonb"`
	Power      string    `bun:"power,default:''"`
	Toughness  string    `bun:"toughness,default:''"`
	ImageURL   string    `bun:"image_url,type:text,default:''"`
}
