package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/abrams/magicbinder/magicbinder/database/models"
	"github.com/abrams/magicbinder/magicbinder/database/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// fakeDB runs the transaction body directly against the shared fake state.
// The coordinator performs every check before its first write, so failed
// operations must leave the fakes untouched without real rollback.
type fakeDB struct{}

func (fakeDB) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

type fakeStores struct {
	binder map[string]int
	decks  map[int64]*models.Deck
	allocs map[string]int
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		binder: make(map[string]int),
		decks:  make(map[int64]*models.Deck),
		allocs: make(map[string]int),
	}
}

func binderKey(userID int64, cardID uuid.UUID) string {
	return fmt.Sprintf("%d:%s", userID, cardID)
}

func allocKey(deckID int64, cardID uuid.UUID, sideboard bool) string {
	return fmt.Sprintf("%d:%s:%t", deckID, cardID, sideboard)
}

func (f *fakeStores) Quantity(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID) (int, error) {
	return f.binder[binderKey(userID, cardID)], nil
}

func (f *fakeStores) Add(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("bad amount %d", amount)
	}
	f.binder[binderKey(userID, cardID)] += amount
	return nil
}

func (f *fakeStores) Remove(ctx context.Context, db bun.IDB, userID int64, cardID uuid.UUID, amount int) error {
	key := binderKey(userID, cardID)
	if f.binder[key] < amount {
		return &repositories.InsufficientQuantityError{Entity: "binder_entry",
			Requested: amount, Available: f.binder[key]}
	}
	f.binder[key] -= amount
	if f.binder[key] == 0 {
		delete(f.binder, key)
	}
	return nil
}

type fakeDecks struct{ stores *fakeStores }

func (f fakeDecks) Get(ctx context.Context, db bun.IDB, deckID int64) (*models.Deck, error) {
	deck, ok := f.stores.decks[deckID]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "deck", ID: deckID}
	}
	copied := *deck
	return &copied, nil
}

func (f fakeDecks) Delete(ctx context.Context, db bun.IDB, deckID int64) error {
	if _, ok := f.stores.decks[deckID]; !ok {
		return &repositories.NotFoundError{Entity: "deck", ID: deckID}
	}
	delete(f.stores.decks, deckID)
	return nil
}

type fakeAllocs struct{ stores *fakeStores }

func (f fakeAllocs) Quantity(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, sideboard bool) (int, error) {
	return f.stores.allocs[allocKey(deckID, cardID, sideboard)], nil
}

func (f fakeAllocs) SetQuantity(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, sideboard bool, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("negative quantity %d", quantity)
	}
	key := allocKey(deckID, cardID, sideboard)
	if quantity == 0 {
		delete(f.stores.allocs, key)
		return nil
	}
	f.stores.allocs[key] = quantity
	return nil
}

func (f fakeAllocs) MoveZone(ctx context.Context, db bun.IDB, deckID int64, cardID uuid.UUID, fromSideboard bool, amount int) error {
	source := allocKey(deckID, cardID, fromSideboard)
	if f.stores.allocs[source] < amount {
		return &repositories.InsufficientQuantityError{Entity: "deck_card",
			Requested: amount, Available: f.stores.allocs[source]}
	}
	f.stores.allocs[source] -= amount
	if f.stores.allocs[source] == 0 {
		delete(f.stores.allocs, source)
	}
	f.stores.allocs[allocKey(deckID, cardID, !fromSideboard)] += amount
	return nil
}

func (f fakeAllocs) ListForDeck(ctx context.Context, db bun.IDB, deckID int64) ([]*models.DeckCard, error) {
	var rows []*models.DeckCard
	prefix := fmt.Sprintf("%d:", deckID)
	for key, qty := range f.stores.allocs {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		parts := strings.Split(key, ":")
		cardID, err := uuid.Parse(parts[1])
		if err != nil {
			return nil, err
		}
		rows = append(rows, &models.DeckCard{
			DeckID:    deckID,
			CardID:    cardID,
			Sideboard: parts[2] == "true",
			Quantity:  qty,
		})
	}
	return rows, nil
}

func (f fakeAllocs) DeleteForDeck(ctx context.Context, db bun.IDB, deckID int64) error {
	prefix := fmt.Sprintf("%d:", deckID)
	for key := range f.stores.allocs {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(f.stores.allocs, key)
		}
	}
	return nil
}

type fixture struct {
	stores *fakeStores
	coord  *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := newFakeStores()
	cache, err := NewOwnershipCache(64)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	coord := NewCoordinator(fakeDB{}, stores, fakeDecks{stores}, fakeAllocs{stores}, cache)
	return &fixture{stores: stores, coord: coord}
}

func (fx *fixture) snapshot() (map[string]int, map[string]int, int) {
	binder := make(map[string]int, len(fx.stores.binder))
	for k, v := range fx.stores.binder {
		binder[k] = v
	}
	allocs := make(map[string]int, len(fx.stores.allocs))
	for k, v := range fx.stores.allocs {
		allocs[k] = v
	}
	return binder, allocs, len(fx.stores.decks)
}

func (fx *fixture) assertUnchanged(t *testing.T, binder, allocs map[string]int, decks int) {
	t.Helper()
	gotBinder, gotAllocs, gotDecks := fx.snapshot()
	if !reflect.DeepEqual(gotBinder, binder) {
		t.Errorf("binder changed: got %v, want %v", gotBinder, binder)
	}
	if !reflect.DeepEqual(gotAllocs, allocs) {
		t.Errorf("allocations changed: got %v, want %v", gotAllocs, allocs)
	}
	if gotDecks != decks {
		t.Errorf("deck count changed: got %d, want %d", gotDecks, decks)
	}
}

// totalOwned sums binder plus all deck allocations for one user and card.
func (fx *fixture) totalOwned(userID int64, cardID uuid.UUID) int {
	total := fx.stores.binder[binderKey(userID, cardID)]
	for deckID, deck := range fx.stores.decks {
		if deck.UserID != userID {
			continue
		}
		total += fx.stores.allocs[allocKey(deckID, cardID, false)]
		total += fx.stores.allocs[allocKey(deckID, cardID, true)]
	}
	return total
}

var (
	cardA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	cardB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

const userID = int64(7)

func TestAddToDeckMovesCopies(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID, Name: "izzet"}
	fx.stores.binder[binderKey(userID, cardA)] = 4

	if err := fx.coord.AddToDeck(context.Background(), userID, 1, cardA, 3, false); err != nil {
		t.Fatalf("AddToDeck: %v", err)
	}
	if got := fx.stores.binder[binderKey(userID, cardA)]; got != 1 {
		t.Errorf("binder = %d, want 1", got)
	}
	if got := fx.stores.allocs[allocKey(1, cardA, false)]; got != 3 {
		t.Errorf("allocation = %d, want 3", got)
	}
	if total := fx.totalOwned(userID, cardA); total != 4 {
		t.Errorf("total owned = %d, want 4", total)
	}
}

func TestAddToDeckInsufficientBinderIsNoOp(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.binder[binderKey(userID, cardA)] = 1
	binder, allocs, decks := fx.snapshot()

	err := fx.coord.AddToDeck(context.Background(), userID, 1, cardA, 2, false)
	var notOwned *NotOwnedError
	if !errors.As(err, &notOwned) {
		t.Fatalf("error = %v, want NotOwnedError", err)
	}
	if notOwned.Available != 1 || notOwned.Requested != 2 {
		t.Errorf("NotOwnedError = %+v, want available 1 requested 2", notOwned)
	}
	fx.assertUnchanged(t, binder, allocs, decks)
}

func TestAddToDeckValidation(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.decks[2] = &models.Deck{ID: 2, UserID: userID + 1}
	fx.stores.binder[binderKey(userID, cardA)] = 4
	binder, allocs, decks := fx.snapshot()

	tests := []struct {
		name   string
		deckID int64
		amount int
		check  func(error) bool
	}{
		{"zero amount", 1, 0, IsInvalidInput},
		{"negative amount", 1, -2, IsInvalidInput},
		{"unknown deck", 99, 1, IsNotFound},
		{"someone else's deck", 2, 1, IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.coord.AddToDeck(context.Background(), userID, tt.deckID, cardA, tt.amount, false)
			if err == nil || !tt.check(err) {
				t.Errorf("error = %v, wrong kind", err)
			}
			fx.assertUnchanged(t, binder, allocs, decks)
		})
	}
}

func TestRemoveFromDeckRoundTrip(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.binder[binderKey(userID, cardA)] = 4

	ctx := context.Background()
	if err := fx.coord.AddToDeck(ctx, userID, 1, cardA, 4, false); err != nil {
		t.Fatalf("AddToDeck: %v", err)
	}
	if err := fx.coord.RemoveFromDeck(ctx, userID, 1, cardA, 4, false); err != nil {
		t.Fatalf("RemoveFromDeck: %v", err)
	}

	if got := fx.stores.binder[binderKey(userID, cardA)]; got != 4 {
		t.Errorf("binder = %d, want 4", got)
	}
	if _, ok := fx.stores.allocs[allocKey(1, cardA, false)]; ok {
		t.Error("emptied allocation row should be gone")
	}
}

func TestRemoveFromDeckInsufficientIsNoOp(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.allocs[allocKey(1, cardA, true)] = 2
	binder, allocs, decks := fx.snapshot()

	err := fx.coord.RemoveFromDeck(context.Background(), userID, 1, cardA, 3, true)
	var insufficient *InsufficientQuantityError
	if !errors.As(err, &insufficient) {
		t.Fatalf("error = %v, want InsufficientQuantityError", err)
	}
	if insufficient.Available != 2 {
		t.Errorf("available = %d, want 2", insufficient.Available)
	}
	fx.assertUnchanged(t, binder, allocs, decks)
}

func TestMoveZonePartialAmount(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.binder[binderKey(userID, cardA)] = 1
	fx.stores.allocs[allocKey(1, cardA, false)] = 4
	fx.stores.allocs[allocKey(1, cardA, true)] = 1

	if err := fx.coord.MoveZone(context.Background(), userID, 1, cardA, false, 2); err != nil {
		t.Fatalf("MoveZone: %v", err)
	}
	if got := fx.stores.allocs[allocKey(1, cardA, false)]; got != 2 {
		t.Errorf("main = %d, want 2", got)
	}
	if got := fx.stores.allocs[allocKey(1, cardA, true)]; got != 3 {
		t.Errorf("sideboard = %d, want 3", got)
	}
	if got := fx.stores.binder[binderKey(userID, cardA)]; got != 1 {
		t.Errorf("binder = %d, want 1 (untouched)", got)
	}
	if total := fx.totalOwned(userID, cardA); total != 6 {
		t.Errorf("total owned = %d, want 6", total)
	}
}

func TestMoveZoneValidation(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.allocs[allocKey(1, cardA, false)] = 3
	binder, allocs, decks := fx.snapshot()

	tests := []struct {
		name   string
		deckID int64
		amount int
		check  func(error) bool
	}{
		{"zero amount", 1, 0, IsInvalidInput},
		{"negative amount", 1, -1, IsInvalidInput},
		{"amount exceeds source zone", 1, 5, IsInsufficientQuantity},
		{"unknown deck", 99, 1, IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.coord.MoveZone(context.Background(), userID, tt.deckID, cardA, false, tt.amount)
			if err == nil || !tt.check(err) {
				t.Errorf("error = %v, wrong kind", err)
			}
			fx.assertUnchanged(t, binder, allocs, decks)
		})
	}
}

func TestMoveSideboardMergesZones(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.allocs[allocKey(1, cardA, false)] = 3
	fx.stores.allocs[allocKey(1, cardA, true)] = 1

	if err := fx.coord.MoveSideboard(context.Background(), userID, 1, cardA, true); err != nil {
		t.Fatalf("MoveSideboard: %v", err)
	}
	if _, ok := fx.stores.allocs[allocKey(1, cardA, false)]; ok {
		t.Error("source zone should be empty after move")
	}
	if got := fx.stores.allocs[allocKey(1, cardA, true)]; got != 4 {
		t.Errorf("sideboard = %d, want 4", got)
	}
}

func TestMoveSideboardEmptySource(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	binder, allocs, decks := fx.snapshot()

	err := fx.coord.MoveSideboard(context.Background(), userID, 1, cardA, true)
	if !IsNotFound(err) {
		t.Fatalf("error = %v, want not found", err)
	}
	fx.assertUnchanged(t, binder, allocs, decks)
}

func TestTransferBetweenDecks(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.decks[2] = &models.Deck{ID: 2, UserID: userID}
	fx.stores.allocs[allocKey(1, cardA, false)] = 4
	fx.stores.allocs[allocKey(2, cardA, false)] = 1

	if err := fx.coord.TransferBetweenDecks(context.Background(), userID, 1, 2, cardA, 3); err != nil {
		t.Fatalf("TransferBetweenDecks: %v", err)
	}
	if got := fx.stores.allocs[allocKey(1, cardA, false)]; got != 1 {
		t.Errorf("source = %d, want 1", got)
	}
	if got := fx.stores.allocs[allocKey(2, cardA, false)]; got != 4 {
		t.Errorf("destination = %d, want 4", got)
	}
	if total := fx.totalOwned(userID, cardA); total != 5 {
		t.Errorf("total owned = %d, want 5", total)
	}
}

func TestTransferBetweenDecksFailuresAreNoOps(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.decks[2] = &models.Deck{ID: 2, UserID: userID}
	fx.stores.allocs[allocKey(1, cardA, false)] = 2
	binder, allocs, decks := fx.snapshot()

	tests := []struct {
		name     string
		src, dst int64
		amount   int
		check    func(error) bool
	}{
		{"same deck", 1, 1, 1, IsInvalidInput},
		{"insufficient source", 1, 2, 5, IsInsufficientQuantity},
		{"unknown destination", 1, 9, 1, IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.coord.TransferBetweenDecks(context.Background(), userID, tt.src, tt.dst, cardA, tt.amount)
			if err == nil || !tt.check(err) {
				t.Errorf("error = %v, wrong kind", err)
			}
			fx.assertUnchanged(t, binder, allocs, decks)
		})
	}
}

func TestDeleteDeckReturnsAllocationsToBinder(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.binder[binderKey(userID, cardA)] = 1
	fx.stores.allocs[allocKey(1, cardA, false)] = 3
	fx.stores.allocs[allocKey(1, cardA, true)] = 2
	fx.stores.allocs[allocKey(1, cardB, false)] = 1

	if err := fx.coord.DeleteDeck(context.Background(), userID, 1); err != nil {
		t.Fatalf("DeleteDeck: %v", err)
	}

	if got := fx.stores.binder[binderKey(userID, cardA)]; got != 6 {
		t.Errorf("binder cardA = %d, want 6", got)
	}
	if got := fx.stores.binder[binderKey(userID, cardB)]; got != 1 {
		t.Errorf("binder cardB = %d, want 1", got)
	}
	if len(fx.stores.allocs) != 0 {
		t.Errorf("allocations remain: %v", fx.stores.allocs)
	}
	if _, ok := fx.stores.decks[1]; ok {
		t.Error("deck should be gone")
	}
}

func TestConservationAcrossSequence(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.decks[2] = &models.Deck{ID: 2, UserID: userID}
	fx.stores.binder[binderKey(userID, cardA)] = 8

	ctx := context.Background()
	steps := []func() error{
		func() error { return fx.coord.AddToDeck(ctx, userID, 1, cardA, 4, false) },
		func() error { return fx.coord.AddToDeck(ctx, userID, 2, cardA, 2, true) },
		func() error { return fx.coord.MoveSideboard(ctx, userID, 2, cardA, false) },
		func() error { return fx.coord.TransferBetweenDecks(ctx, userID, 1, 2, cardA, 3) },
		func() error { return fx.coord.RemoveFromDeck(ctx, userID, 2, cardA, 5, false) },
		func() error { return fx.coord.DeleteDeck(ctx, userID, 1) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if total := fx.totalOwned(userID, cardA); total != 8 {
			t.Fatalf("step %d: total owned = %d, want 8", i, total)
		}
	}
	if got := fx.stores.binder[binderKey(userID, cardA)]; got != 8 {
		t.Errorf("final binder = %d, want 8", got)
	}
}

func TestOwnershipCacheInvalidatedOnMutation(t *testing.T) {
	fx := newFixture(t)
	fx.stores.decks[1] = &models.Deck{ID: 1, UserID: userID}
	fx.stores.binder[binderKey(userID, cardA)] = 4
	fx.coord.owned.Put(userID, cardA, 4)

	if err := fx.coord.AddToDeck(context.Background(), userID, 1, cardA, 1, false); err != nil {
		t.Fatalf("AddToDeck: %v", err)
	}
	if _, ok := fx.coord.owned.Get(userID, cardA); ok {
		t.Error("cache entry should be invalidated after mutation")
	}
}
