package catalog

import "strings"

// Index provides lookups over an immutable card list. It is built once
// per universe load and shared read-only afterward.
type Index struct {
	cards      []Card
	byID       map[string]int
	byPrinting map[printingKey]int
	byName     map[string]int // first printing per name
}

type printingKey struct {
	set             string
	collectorNumber string
}

// NewIndex builds an index over the given cards. The slice is retained;
// callers must not mutate it afterward.
func NewIndex(cards []Card) *Index {
	idx := &Index{
		cards:      cards,
		byID:       make(map[string]int, len(cards)),
		byPrinting: make(map[printingKey]int, len(cards)),
		byName:     make(map[string]int),
	}
	for i, c := range cards {
		if _, ok := idx.byID[c.ID]; !ok {
			idx.byID[c.ID] = i
		}
		key := printingKey{set: c.SetCode, collectorNumber: c.CollectorNumber}
		if _, ok := idx.byPrinting[key]; !ok {
			idx.byPrinting[key] = i
		}
		if _, ok := idx.byName[c.Name]; !ok {
			idx.byName[c.Name] = i
		}
	}
	return idx
}

// Cards returns the indexed card list.
func (idx *Index) Cards() []Card {
	return idx.cards
}

// Len returns the number of indexed cards.
func (idx *Index) Len() int {
	return len(idx.cards)
}

// ByID returns the card with the given stable id.
func (idx *Index) ByID(id string) (Card, bool) {
	if i, ok := idx.byID[id]; ok {
		return idx.cards[i], true
	}
	return Card{}, false
}

// ByPrinting returns the card with the given set code (lowercase) and
// collector number.
func (idx *Index) ByPrinting(setCode, collectorNumber string) (Card, bool) {
	if i, ok := idx.byPrinting[printingKey{set: strings.ToLower(setCode), collectorNumber: collectorNumber}]; ok {
		return idx.cards[i], true
	}
	return Card{}, false
}

// ByName returns the first printing with exactly the given name.
func (idx *Index) ByName(name string) (Card, bool) {
	if i, ok := idx.byName[name]; ok {
		return idx.cards[i], true
	}
	return Card{}, false
}

// ByNamePrefix returns the first card whose name starts with the given
// prefix. Used to resolve split and adventure cards whose stored name is
// only the front face.
func (idx *Index) ByNamePrefix(prefix string) (Card, bool) {
	for i := range idx.cards {
		if strings.HasPrefix(idx.cards[i].Name, prefix) {
			return idx.cards[i], true
		}
	}
	return Card{}, false
}
