package search

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// Manager hands out sessions keyed by opaque id. Sessions live in an LRU
// so abandoned ones age out instead of accumulating.
type Manager struct {
	sessions *lru.Cache
}

func NewManager(size int) (*Manager, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}
	return &Manager{sessions: cache}, nil
}

func (m *Manager) Open(fetch Fetcher, pageSize int) (string, *Session) {
	id := uuid.NewString()
	session := NewSession(fetch, pageSize)
	m.sessions.Add(id, session)
	return id, session
}

func (m *Manager) Get(id string) (*Session, bool) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

func (m *Manager) Close(id string) {
	m.sessions.Remove(id)
}
