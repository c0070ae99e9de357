package library

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cardbinder/cardbinder/internal/catalog"
)

// Ownership exposes the owned quantities consulted by the ownership
// predicate. Maps omit zero entries.
type Ownership struct {
	Regular map[string]int
	Foil    map[string]int
}

// Owned reports whether any copy of the card is owned.
func (o Ownership) Owned(cardID string) bool {
	return o.Regular[cardID] > 0 || o.Foil[cardID] > 0
}

// Total returns the combined regular and foil quantity for a card.
func (o Ownership) Total(cardID string) int {
	return o.Regular[cardID] + o.Foil[cardID]
}

// SetRanker maps a set code to its release-order position. Unknown sets
// must rank after known ones.
type SetRanker interface {
	SetRank(code string) int
}

// SetRankFunc adapts an ordinary function to SetRanker.
type SetRankFunc func(code string) int

// SetRank implements SetRanker.
func (f SetRankFunc) SetRank(code string) int { return f(code) }

// Apply filters and sorts the catalog. Predicates are conjunctive across
// categories; each one matches everything when its filter field is
// unset. The returned slice is freshly allocated and contains only
// elements of the input.
func Apply(cards []catalog.Card, f Filters, owned Ownership, ranker SetRanker) []catalog.Card {
	result := make([]catalog.Card, 0, len(cards))
	for i := range cards {
		if matches(&cards[i], f, owned) {
			result = append(result, cards[i])
		}
	}
	sortCards(result, f.Sort, f.Order, ranker)
	return result
}

func matches(card *catalog.Card, f Filters, owned Ownership) bool {
	typeLine := card.PrimaryTypeLine()

	// Text search over name, type line, and rules text
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(card.Name), needle) &&
			!strings.Contains(strings.ToLower(typeLine), needle) &&
			!strings.Contains(strings.ToLower(card.PrimaryOracleText()), needle) {
			return false
		}
	}

	if f.Rarity != "" && card.Rarity != f.Rarity {
		return false
	}

	if f.Set != "" && card.SetCode != f.Set {
		return false
	}

	// Any selected type tag may match (disjunction within the category)
	if len(f.Types) > 0 {
		any := false
		for _, tag := range f.Types {
			if matchesTypeTag(typeLine, tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}

	if f.ManaValue != "" {
		if mv, err := strconv.Atoi(f.ManaValue); err == nil {
			if card.CMC != float64(mv) {
				return false
			}
		}
	}

	switch f.Ownership {
	case OwnershipOwned:
		if !owned.Owned(card.ID) {
			return false
		}
	case OwnershipMissing:
		if owned.Owned(card.ID) {
			return false
		}
	}

	// Colorless tag matches zero-color cards; otherwise any selected
	// color present in the card's color set matches (partial match, not
	// identity equality).
	if len(f.Colors) > 0 {
		matched := false
		for _, c := range f.Colors {
			if c == "C" {
				if len(card.Colors) == 0 {
					matched = true
					break
				}
				continue
			}
			if containsString(card.Colors, c) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	// Minimum inclusive, maximum exclusive
	price := card.EffectivePrice()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price >= *f.MaxPrice {
		return false
	}

	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

var nonDigitsRe = regexp.MustCompile(`\D`)

// collectorNumeric extracts the numeric portion of a collector number
// ("T12a" -> 12). Returns 0 if no digits are present.
func collectorNumeric(cn string) int {
	n, err := strconv.Atoi(nonDigitsRe.ReplaceAllString(cn, ""))
	if err != nil {
		return 0
	}
	return n
}

func sortCards(cards []catalog.Card, key SortKey, order SortOrder, ranker SetRanker) {
	sort.SliceStable(cards, func(i, j int) bool {
		cmp := compareCards(&cards[i], &cards[j], key, ranker)
		if order == OrderDesc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareCards(a, b *catalog.Card, key SortKey, ranker SetRanker) int {
	switch key {
	case SortName:
		return strings.Compare(a.Name, b.Name)
	case SortManaValue:
		return compareFloat(a.CMC, b.CMC)
	case SortPrice:
		return compareFloat(a.EffectivePrice(), b.EffectivePrice())
	default:
		// Release order: set position in the universe's configured
		// order, then numeric collector number, then lexicographic.
		rankA, rankB := 0, 0
		if ranker != nil {
			rankA, rankB = ranker.SetRank(a.SetCode), ranker.SetRank(b.SetCode)
		}
		if rankA != rankB {
			return rankA - rankB
		}
		numA, numB := collectorNumeric(a.CollectorNumber), collectorNumeric(b.CollectorNumber)
		if numA != numB {
			return numA - numB
		}
		return strings.Compare(a.CollectorNumber, b.CollectorNumber)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
