package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BinderEntry holds the unallocated copies of one card a user owns.
// Quantity is always >= 1; entries that would reach zero are deleted.
type BinderEntry struct {
	bun.BaseModel `bun:"table:binder_entries,alias:be"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	CardID    uuid.UUID `bun:"card_id,type:uuid,notnull"`
	Quantity  int       `bun:"quantity,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	// Relations
	Card *Card `bun:"rel:belongs-to,join:card_id=id"`
}
