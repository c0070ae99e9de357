package deckio

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/collection"
)

// lineRe matches one decklist entry. The name group is lazy so the last
// parenthesized token is taken as the set code.
var lineRe = regexp.MustCompile(`^(\d+)\s+(.+?)\s+\(([A-Za-z0-9]+)\)\s+(\S+)(?:\s+(\*F\*))?\s*$`)

// ImportResult reports what an import parse resolved.
type ImportResult struct {
	Items   []collection.ImportItem `json:"-"`
	Matched int                     `json:"matched"`
	Total   int                     `json:"total"`
}

// Import parses decklist text against the catalog. Blank lines are
// ignored; every other line counts toward Total. A line resolves only
// when its (set, collector number) pair names a known printing —
// malformed and unknown lines are skipped, never fail the import.
func Import(text string, idx *catalog.Index) ImportResult {
	var result ImportResult

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		result.Total++

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			continue
		}
		card, ok := idx.ByPrinting(m[3], m[4])
		if !ok {
			continue
		}

		result.Matched++
		result.Items = append(result.Items, collection.ImportItem{
			CardID: card.ID,
			Qty:    qty,
			Foil:   m[5] != "",
		})
	}
	return result
}
