package decks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cardbinder/cardbinder/internal/catalog"
)

func TestHydrateFoldsDuplicateRows(t *testing.T) {
	rows := []Row{
		{DeckName: "Aang (0001)", CardTitle: "Aang, Avatar in Training", CardSetCode: "tla", CardCollectorNumber: "1"},
		{DeckName: "Aang (0001)", CardTitle: "Air Scooter", CardSetCode: "tla", CardCollectorNumber: "17"},
		{DeckName: "Aang (0001)", CardTitle: "Air Scooter", CardSetCode: "tla", CardCollectorNumber: "17"},
		{DeckName: "Aang (0001)", CardTitle: "Air Scooter", CardSetCode: "tla", CardCollectorNumber: "17"},
	}

	decks := Hydrate(rows, nil)
	if len(decks) != 1 {
		t.Fatalf("decks = %d, want 1", len(decks))
	}
	deck := decks[0]
	if len(deck.Cards) != 2 {
		t.Fatalf("entries = %d, want 2 (duplicates folded)", len(deck.Cards))
	}
	if deck.Cards[1].Name != "Air Scooter" || deck.Cards[1].Qty != 3 {
		t.Errorf("folded entry = %+v, want qty 3", deck.Cards[1])
	}
	if deck.Cards[0].Qty != 1 {
		t.Errorf("single entry qty = %d, want 1", deck.Cards[0].Qty)
	}
}

func TestHydrateDistinctPrintingsStaySeparate(t *testing.T) {
	rows := []Row{
		{DeckName: "D", CardTitle: "Island", CardSetCode: "tla", CardCollectorNumber: "100"},
		{DeckName: "D", CardTitle: "Island", CardSetCode: "tla", CardCollectorNumber: "101"},
	}
	decks := Hydrate(rows, nil)
	if len(decks[0].Cards) != 2 {
		t.Errorf("different collector numbers must not fold: %+v", decks[0].Cards)
	}
}

func TestHydrateDefaultsAndSummaries(t *testing.T) {
	rows := []Row{
		{DeckName: "Katara (0002)", CardTitle: "Katara, Hope of the Tribe"},
		{DeckName: "Aang (0001)", DeckSource: "Starter Decks", CardTitle: "Aang, Avatar in Training"},
	}
	summaries := map[string]Summary{
		"Aang (0001)": {Strategy: "Tempo and evasion."},
	}

	decks := Hydrate(rows, summaries)
	if decks[0].Title != "Aang (0001)" || decks[1].Title != "Katara (0002)" {
		t.Fatalf("decks not sorted by title: %s, %s", decks[0].Title, decks[1].Title)
	}
	if decks[0].Source != "Starter Decks" {
		t.Errorf("explicit source lost: %q", decks[0].Source)
	}
	if decks[0].Strategy != "Tempo and evasion." {
		t.Errorf("summary not merged: %q", decks[0].Strategy)
	}
	if decks[1].Source != defaultSource {
		t.Errorf("default source = %q, want %q", decks[1].Source, defaultSource)
	}
}

func TestLoaderFallsBack(t *testing.T) {
	// No path configured
	if got := NewLoader("", nil, nil).Load(context.Background()); len(got) == 0 {
		t.Error("empty path should yield built-in decks")
	}

	// Missing file
	if got := NewLoader("/nonexistent/decks.json", nil, nil).Load(context.Background()); len(got) == 0 {
		t.Error("missing dataset should yield built-in decks")
	}

	// Malformed file
	bad := filepath.Join(t.TempDir(), "decks.json")
	os.WriteFile(bad, []byte("{not json"), 0o644)
	if got := NewLoader(bad, nil, nil).Load(context.Background()); len(got) == 0 {
		t.Error("malformed dataset should yield built-in decks")
	}
}

func TestLoaderReadsDataset(t *testing.T) {
	rows := []Row{
		{DeckName: "Zuko (0003)", CardTitle: "Zuko, Exiled Prince", CardSetCode: "tla", CardCollectorNumber: "3"},
	}
	data, _ := json.Marshal(rows)
	path := filepath.Join(t.TempDir(), "decks.json")
	os.WriteFile(path, data, 0o644)

	decks := NewLoader(path, nil, nil).Load(context.Background())
	if len(decks) != 1 || decks[0].Title != "Zuko (0003)" {
		t.Fatalf("loaded decks = %+v", decks)
	}
}

func resolverIndex() *catalog.Index {
	return catalog.NewIndex([]catalog.Card{
		{ID: "aang", Name: "Aang, Avatar in Training", SetCode: "tla", CollectorNumber: "1"},
		{ID: "aang-deck", Name: "Aang", SetCode: "tlj", CollectorNumber: "0001"},
		{ID: "fire-ice", Name: "Fire // Ice", SetCode: "tla", CollectorNumber: "290"},
		{ID: "island", Name: "Island", SetCode: "tla", CollectorNumber: "100"},
	})
}

func TestResolveCascade(t *testing.T) {
	idx := resolverIndex()

	// Precise printing wins
	card, ok := Resolve(CardEntry{Name: "Island", Set: "tla", CollectorNumber: "100"}, idx)
	if !ok || card.ID != "island" {
		t.Errorf("precise resolve = %+v, %v", card, ok)
	}

	// Unknown printing falls through to exact name
	card, ok = Resolve(CardEntry{Name: "Island", Set: "zzz", CollectorNumber: "9"}, idx)
	if !ok || card.ID != "island" {
		t.Errorf("name fallback = %+v, %v", card, ok)
	}

	// Front-face prefix resolves split cards
	card, ok = Resolve(CardEntry{Name: "Fire"}, idx)
	if !ok || card.ID != "fire-ice" {
		t.Errorf("prefix fallback = %+v, %v", card, ok)
	}

	if _, ok := Resolve(CardEntry{Name: "Unknown Card"}, idx); ok {
		t.Error("unresolvable entry must report false")
	}
}

func TestThemeCard(t *testing.T) {
	idx := resolverIndex()

	deck := Deck{
		Title: "Aang (0001)",
		Cards: []CardEntry{{Name: "Aang, Avatar in Training", Set: "tla", CollectorNumber: "1", Qty: 1}},
	}

	// Name match inside the deck-face set, case-insensitive
	card, ok := ThemeCard(deck, idx, "tlj")
	if !ok || card.ID != "aang-deck" {
		t.Errorf("theme by name = %+v, %v", card, ok)
	}

	// Collector number from the title when the name misses
	variation := Deck{Title: "Somebody (0001) - Variation 1"}
	card, ok = ThemeCard(variation, idx, "tlj")
	if !ok || card.ID != "aang-deck" {
		t.Errorf("theme by number = %+v, %v", card, ok)
	}

	// Without a deck set, fall back to the deck's own prefix entry
	card, ok = ThemeCard(deck, idx, "")
	if !ok || card.ID != "aang" {
		t.Errorf("theme by entry = %+v, %v", card, ok)
	}
}
