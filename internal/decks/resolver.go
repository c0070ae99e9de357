package decks

import (
	"regexp"
	"strings"

	"github.com/cardbinder/cardbinder/internal/catalog"
)

// Resolve maps a deck card entry to a catalog card. The cascade tries the
// precise (set, collector number) printing first, then an exact name
// match, then a front-face prefix match for split and adventure cards.
// The cascade is best-effort, not guaranteed collision-free.
func Resolve(entry CardEntry, idx *catalog.Index) (catalog.Card, bool) {
	if entry.Set != "" && entry.CollectorNumber != "" {
		if card, ok := idx.ByPrinting(entry.Set, entry.CollectorNumber); ok {
			return card, true
		}
	}
	if card, ok := idx.ByName(entry.Name); ok {
		return card, true
	}
	if card, ok := idx.ByNamePrefix(entry.Name + " //"); ok {
		return card, true
	}
	return catalog.Card{}, false
}

var deckNumberRe = regexp.MustCompile(`\((\d+)\)`)

// ThemeCard finds the catalog card whose printing doubles as the deck's
// named face. Deck titles look like "Aang (0001)" or
// "Adept (0011) - Variation 1"; the clean name is matched
// case-insensitively within the universe's deck-face set, falling back to
// the collector number embedded in the title, then to the deck's own
// first matching entry.
func ThemeCard(deck Deck, idx *catalog.Index, deckSet string) (catalog.Card, bool) {
	clean := strings.TrimSpace(strings.SplitN(deck.Title, " (", 2)[0])

	if deckSet != "" {
		lower := strings.ToLower(clean)
		for _, c := range idx.Cards() {
			if c.SetCode == deckSet && strings.ToLower(c.Name) == lower {
				return c, true
			}
		}
		if m := deckNumberRe.FindStringSubmatch(deck.Title); m != nil {
			if card, ok := idx.ByPrinting(deckSet, m[1]); ok {
				return card, true
			}
		}
	}

	for _, entry := range deck.Cards {
		if strings.HasPrefix(entry.Name, clean) {
			if card, ok := Resolve(entry, idx); ok {
				return card, true
			}
		}
	}
	return catalog.Card{}, false
}
