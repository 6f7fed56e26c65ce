package inventory

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// OwnershipCache holds confirmed binder quantities keyed by (user, card).
// Entries are written only from store reads, never optimistically, and the
// coordinator invalidates them after every successful mutation. A miss is
// always safe: callers fall back to the store.
type OwnershipCache struct {
	cache *lru.Cache
}

func NewOwnershipCache(size int) (*OwnershipCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("ownership cache: %w", err)
	}
	return &OwnershipCache{cache: cache}, nil
}

func ownershipKey(userID int64, cardID uuid.UUID) string {
	return fmt.Sprintf("%d:%s", userID, cardID)
}

func (c *OwnershipCache) Get(userID int64, cardID uuid.UUID) (int, bool) {
	v, ok := c.cache.Get(ownershipKey(userID, cardID))
	if !ok {
		return 0, false
	}
	return v.(int), true
}

func (c *OwnershipCache) Put(userID int64, cardID uuid.UUID, quantity int) {
	c.cache.Add(ownershipKey(userID, cardID), quantity)
}

func (c *OwnershipCache) Invalidate(userID int64, cardID uuid.UUID) {
	c.cache.Remove(ownershipKey(userID, cardID))
}
