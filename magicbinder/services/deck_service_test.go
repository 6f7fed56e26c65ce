package services

import (
	"reflect"
	"testing"

	"github.com/abrams/magicbinder/magicbinder/database/models"
)

func deckRow(name string, quantity int, sideboard bool) *models.DeckCard {
	return &models.DeckCard{
		Card:      &models.Card{Name: name},
		Quantity:  quantity,
		Sideboard: sideboard,
	}
}

func TestBuildDeckViewSplitsAndSorts(t *testing.T) {
	deck := &models.Deck{ID: 1, Name: "burn"}
	rows := []*models.DeckCard{
		deckRow("Steam Vents", 2, false),
		deckRow("Duress", 2, true),
		deckRow("Lightning Bolt", 4, false),
	}

	view := buildDeckView(deck, rows)

	gotMain := []string{rowName(view.Main[0]), rowName(view.Main[1])}
	if !reflect.DeepEqual(gotMain, []string{"Lightning Bolt", "Steam Vents"}) {
		t.Errorf("main order = %v", gotMain)
	}
	if view.MainCount != 6 {
		t.Errorf("main count = %d, want 6", view.MainCount)
	}
	if view.SideboardCount != 2 {
		t.Errorf("sideboard count = %d, want 2", view.SideboardCount)
	}
}

func TestBuildDeckList(t *testing.T) {
	tests := []struct {
		name string
		rows []*models.DeckCard
		want string
	}{
		{
			name: "main and sideboard",
			rows: []*models.DeckCard{
				deckRow("Steam Vents", 2, false),
				deckRow("Lightning Bolt", 4, false),
				deckRow("Duress", 2, true),
			},
			want: "4 Lightning Bolt\n2 Steam Vents\n\nSideboard\n2 Duress\n",
		},
		{
			name: "main only",
			rows: []*models.DeckCard{
				deckRow("Lightning Bolt", 4, false),
			},
			want: "4 Lightning Bolt\n",
		},
		{
			name: "sideboard only",
			rows: []*models.DeckCard{
				deckRow("Duress", 2, true),
			},
			want: "Sideboard\n2 Duress\n",
		},
		{
			name: "empty deck",
			rows: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := buildDeckView(&models.Deck{Name: "burn"}, tt.rows)
			if got := BuildDeckList(view); got != tt.want {
				t.Errorf("BuildDeckList() = %q, want %q", got, tt.want)
			}
		})
	}
}
