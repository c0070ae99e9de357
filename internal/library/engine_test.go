package library

import (
	"testing"

	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/scryfall"
)

func strptr(s string) *string { return &s }
func fptr(f float64) *float64 { return &f }

// testCatalog is a small universe spanning two sets in release order
// (tla before tlj).
func testCatalog() []catalog.Card {
	return []catalog.Card{
		{
			ID: "bolt", Name: "Lightning Bolt", CMC: 1, TypeLine: "Instant",
			OracleText: "Lightning Bolt deals 3 damage to any target.",
			Colors:     []string{"R"}, Rarity: "uncommon",
			SetCode: "tla", CollectorNumber: "117",
			Prices: scryfall.Prices{USD: strptr("1.50")},
		},
		{
			ID: "bolt-hound", Name: "Boltwing Hound", CMC: 3, TypeLine: "Creature — Dog",
			Colors: []string{"R"}, Rarity: "common",
			SetCode: "tlj", CollectorNumber: "12",
			Prices: scryfall.Prices{USD: strptr("0.05")},
		},
		{
			ID: "sol-ring", Name: "Sol Ring", CMC: 1, TypeLine: "Artifact",
			OracleText: "{T}: Add {C}{C}.", Rarity: "rare",
			SetCode: "tla", CollectorNumber: "T12a",
			Prices: scryfall.Prices{USD: strptr("0"), USDFoil: strptr("24.00")},
		},
		{
			ID: "angel", Name: "Serra Angel", CMC: 5, TypeLine: "Creature — Angel",
			OracleText: "Flying, vigilance",
			Colors:     []string{"W"}, Rarity: "uncommon",
			SetCode: "tlj", CollectorNumber: "4",
			Prices: scryfall.Prices{USD: strptr("0.25")},
		},
		{
			ID: "saga", Name: "History of Benalia", CMC: 3, TypeLine: "Enchantment — Saga",
			Colors: []string{"W"}, Rarity: "mythic",
			SetCode: "tla", CollectorNumber: "21",
			Prices: scryfall.Prices{},
		},
	}
}

func testRanker() SetRanker {
	return SetRankFunc(func(code string) int {
		switch code {
		case "tla":
			return 0
		case "tlj":
			return 1
		default:
			return 3
		}
	})
}

func ids(cards []catalog.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func assertIDs(t *testing.T, got []catalog.Card, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got %v, want %v", gotIDs, want)
		}
	}
}

func TestApplyDefaultFiltersReleaseOrder(t *testing.T) {
	got := Apply(testCatalog(), DefaultFilters(), Ownership{}, testRanker())
	// tla by numeric collector number (T12a=12), then tlj
	assertIDs(t, got, "sol-ring", "saga", "bolt", "angel", "bolt-hound")
}

func TestSearchMatchesNameTypeAndText(t *testing.T) {
	f := DefaultFilters()
	f.Search = "bolt"
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	// "bolt" hits both Lightning Bolt (name+text) and Boltwing Hound (name)
	assertIDs(t, got, "bolt", "bolt-hound")

	f.Search = "vigilance"
	got = Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "angel")

	f.Search = "angel"
	got = Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "angel")
}

func TestFiltersAreConjunctive(t *testing.T) {
	f := DefaultFilters()
	f.Search = "bolt"
	f.Rarity = "common"
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "bolt-hound")
}

func TestSetAndRarityFilters(t *testing.T) {
	f := DefaultFilters()
	f.Set = "tlj"
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "angel", "bolt-hound")

	f = DefaultFilters()
	f.Rarity = "mythic"
	got = Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "saga")
}

func TestTypeTagsDisjunctiveWithinCategory(t *testing.T) {
	f := DefaultFilters()
	f.Types = []string{"Instant", "Saga"}
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "saga", "bolt")
}

func TestCompoundTypeTagRequiresAllWords(t *testing.T) {
	if matchesTypeTag("Creature — Dog", "Artifact Creature") {
		t.Error("compound tag matched a plain creature")
	}
	if !matchesTypeTag("Legendary Artifact Creature — Golem", "Legendary Artifact Creature") {
		t.Error("compound tag failed on a full match")
	}
	// Unknown tags match on their own text
	if !matchesTypeTag("Kindred Instant — Elf", "Kindred") {
		t.Error("unknown tag should substring-match the type line")
	}
}

func TestManaValueFilter(t *testing.T) {
	f := DefaultFilters()
	f.ManaValue = "3"
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "saga", "bolt-hound")

	// Non-numeric mana value is ignored
	f.ManaValue = "x"
	got = Apply(testCatalog(), f, Ownership{}, testRanker())
	if len(got) != 5 {
		t.Errorf("non-numeric cmc filter should match everything, got %d", len(got))
	}
}

func TestOwnershipFilter(t *testing.T) {
	owned := Ownership{
		Regular: map[string]int{"bolt": 2},
		Foil:    map[string]int{"sol-ring": 1},
	}

	f := DefaultFilters()
	f.Ownership = OwnershipOwned
	got := Apply(testCatalog(), f, owned, testRanker())
	// Foil-only copies still count as owned
	assertIDs(t, got, "sol-ring", "bolt")

	f.Ownership = OwnershipMissing
	got = Apply(testCatalog(), f, owned, testRanker())
	assertIDs(t, got, "saga", "angel", "bolt-hound")
}

func TestColorFilter(t *testing.T) {
	f := DefaultFilters()
	f.Colors = []string{"W"}
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "saga", "angel")

	// "C" matches zero-color cards only
	f.Colors = []string{"C"}
	got = Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "sol-ring")

	// Disjunction across selected colors
	f.Colors = []string{"C", "R"}
	got = Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "sol-ring", "bolt", "bolt-hound")
}

func TestPriceBoundsMinInclusiveMaxExclusive(t *testing.T) {
	f := DefaultFilters()
	f.MinPrice = fptr(1.50)
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	// Sol Ring's effective price is the foil 24.00 (regular is 0)
	assertIDs(t, got, "sol-ring", "bolt")

	f = DefaultFilters()
	f.MaxPrice = fptr(1.50)
	got = Apply(testCatalog(), f, Ownership{}, testRanker())
	// 1.50 itself is excluded; priceless saga counts as 0
	assertIDs(t, got, "saga", "angel", "bolt-hound")
}

func TestSortByNameAndDescending(t *testing.T) {
	f := DefaultFilters()
	f.Sort = SortName
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "bolt-hound", "saga", "bolt", "angel", "sol-ring")

	f.Order = OrderDesc
	got = Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "sol-ring", "angel", "bolt", "saga", "bolt-hound")
}

func TestSortByPrice(t *testing.T) {
	f := DefaultFilters()
	f.Sort = SortPrice
	f.Order = OrderDesc
	got := Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, got, "sol-ring", "bolt", "angel", "bolt-hound", "saga")
}

func TestSortIsDeterministic(t *testing.T) {
	f := DefaultFilters()
	f.Sort = SortManaValue
	a := Apply(testCatalog(), f, Ownership{}, testRanker())
	b := Apply(testCatalog(), f, Ownership{}, testRanker())
	assertIDs(t, b, ids(a)...)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	cards := testCatalog()
	firstID := cards[0].ID

	f := DefaultFilters()
	f.Sort = SortName
	f.Order = OrderDesc
	Apply(cards, f, Ownership{}, testRanker())

	if cards[0].ID != firstID {
		t.Error("input slice order changed")
	}
}

func TestCollectorNumeric(t *testing.T) {
	tests := []struct {
		cn   string
		want int
	}{
		{"117", 117},
		{"T12a", 12},
		{"★", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := collectorNumeric(tt.cn); got != tt.want {
			t.Errorf("collectorNumeric(%q) = %d, want %d", tt.cn, got, tt.want)
		}
	}
}
