// Package deckio converts between collection state and the plain-text
// decklist interchange format: one `<qty> <Name> (<SET>) <number>` line
// per printing, with a trailing `*F*` marker for foils.
package deckio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/collection"
)

// Export renders owned cards as decklist text. Regular printings come
// first, then foils; each group is ordered by card ID so repeated
// exports of the same collection are byte-identical. Card IDs missing
// from the index are skipped.
func Export(state collection.State, idx *catalog.Index) string {
	var b strings.Builder
	writeGroup(&b, state.Cards, idx, false)
	writeGroup(&b, state.FoilCards, idx, true)
	return b.String()
}

func writeGroup(b *strings.Builder, counts map[string]int, idx *catalog.Index, foil bool) {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		qty := counts[id]
		if qty <= 0 {
			continue
		}
		card, ok := idx.ByID(id)
		if !ok {
			continue
		}
		fmt.Fprintf(b, "%d %s (%s) %s", qty, card.Name, strings.ToUpper(card.SetCode), card.CollectorNumber)
		if foil {
			b.WriteString(" *F*")
		}
		b.WriteString("\n")
	}
}
