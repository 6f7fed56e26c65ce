package search

import (
	"context"
	"sync"

	"github.com/abrams/magicbinder/magicbinder/database/models"
)

// Item is one search hit. Owned carries the caller's confirmed copies of the
// card and is zero for pure catalog results.
type Item struct {
	Card  *models.Card
	Owned int
}

// Page is one fetched page plus the total page count for the query.
type Page struct {
	Items      []Item
	TotalPages int
}

// Fetcher loads one page of results for a compiled query. Catalog and binder
// searches plug in here with identical parameters.
type Fetcher func(ctx context.Context, q ParsedQuery, page, pageSize int) (Page, error)

// State is a point-in-time snapshot of a session.
type State struct {
	Query      string
	Page       int
	PageSize   int
	TotalPages int
	Loading    bool
	Items      []Item
}

// Session owns the search state for one client: the raw query text, the
// current page and the last results. Concurrent fetches are serialized by
// ticket: every fetch takes the next sequence number, and a response whose
// ticket is no longer current is discarded, so a slow old request can never
// overwrite the results of a newer one.
type Session struct {
	fetch    Fetcher
	pageSize int

	mu         sync.Mutex
	seq        uint64
	query      string
	page       int
	loading    bool
	items      []Item
	totalPages int
}

func NewSession(fetch Fetcher, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Session{fetch: fetch, pageSize: pageSize}
}

// SetQuery updates the query text without fetching. Results stay as they are
// until Submit.
func (s *Session) SetQuery(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = raw
}

// Submit compiles the current query and fetches its first page.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	s.page = 0
	return s.refreshLocked(ctx)
}

// ChangePage fetches the given page for the current query. Pages below zero
// clamp to zero; pages past the end come back empty from the fetcher.
func (s *Session) ChangePage(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	s.mu.Lock()
	s.page = page
	return s.refreshLocked(ctx)
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return State{
		Query:      s.query,
		Page:       s.page,
		PageSize:   s.pageSize,
		TotalPages: s.totalPages,
		Loading:    s.loading,
		Items:      items,
	}
}

// refreshLocked is entered with s.mu held and releases it around the fetch.
func (s *Session) refreshLocked(ctx context.Context) error {
	s.seq++
	ticket := s.seq
	compiled := Compile(s.query)
	page := s.page
	s.loading = true
	s.mu.Unlock()

	result, err := s.fetch(ctx, compiled, page, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.seq {
		// A newer fetch owns the session now; this response is stale.
		return nil
	}
	s.loading = false
	if err != nil {
		s.items = nil
		s.totalPages = 0
		return err
	}
	s.items = result.Items
	s.totalPages = result.TotalPages
	return nil
}
