// Package library implements the card filtering, sorting, and
// aggregation engine behind the browsing and stats views. Everything in
// this package is a pure function of its inputs: the host recomputes
// results on every keystroke, so identical inputs must always produce
// identical ordered output.
package library

import "strings"

// OwnershipStatus restricts results by owned quantity.
type OwnershipStatus string

const (
	OwnershipAll     OwnershipStatus = "all"
	OwnershipOwned   OwnershipStatus = "owned"
	OwnershipMissing OwnershipStatus = "missing"
)

// SortKey selects the primary comparison for ordering results.
type SortKey string

const (
	SortReleaseOrder SortKey = "collector_number" // set order, then collector number
	SortName         SortKey = "name"
	SortManaValue    SortKey = "cmc"
	SortPrice        SortKey = "price"
)

// SortOrder flips the comparison uniformly after the key compares.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Filters describes the filter and sort criteria for the library view. A zero
// field means "match everything" for that predicate. The value is
// replaced wholesale on reset.
type Filters struct {
	Search    string          `json:"search"`
	Rarity    string          `json:"rarity"`
	Set       string          `json:"set"`
	Types     []string        `json:"types"`
	ManaValue string          `json:"cmc"`
	Colors    []string        `json:"colors"`
	Ownership OwnershipStatus `json:"ownershipStatus"`
	Sort      SortKey         `json:"sort"`
	Order     SortOrder       `json:"order"`
	MinPrice  *float64        `json:"minPrice,omitempty"`
	MaxPrice  *float64        `json:"maxPrice,omitempty"`
}

// DefaultFilters returns the unfiltered view: everything, release order.
func DefaultFilters() Filters {
	return Filters{
		Ownership: OwnershipAll,
		Sort:      SortReleaseOrder,
		Order:     OrderAsc,
	}
}

// typeRequirements maps each type-filter tag to the substrings that must
// all be present in the type line. Tags not listed here match on the tag
// text itself.
var typeRequirements = map[string][]string{
	// Creatures
	"Creature":                    {"Creature"},
	"Legendary Creature":          {"Legendary", "Creature"},
	"Artifact Creature":           {"Artifact", "Creature"},
	"Legendary Artifact Creature": {"Legendary", "Artifact", "Creature"},

	// Artifacts
	"Artifact":           {"Artifact"},
	"Legendary Artifact": {"Legendary", "Artifact"},
	"Equipment":          {"Equipment"},
	"Vehicle":            {"Vehicle"},

	// Enchantments
	"Enchantment":           {"Enchantment"},
	"Legendary Enchantment": {"Legendary", "Enchantment"},
	"Aura":                  {"Aura"},
	"Saga":                  {"Saga"},

	// Spells
	"Instant":        {"Instant"},
	"Sorcery":        {"Sorcery"},
	"Instant Lesson": {"Instant", "Lesson"},
	"Sorcery Lesson": {"Sorcery", "Lesson"},

	// Lands
	"Land":       {"Land"},
	"Basic Land": {"Basic", "Land"},

	// Other
	"Planeswalker": {"Planeswalker"},
	"Token":        {"Token"},
	"Emblem":       {"Emblem"},
}

// matchesTypeTag reports whether a type line satisfies one type-filter
// tag. Compound tags require every listed substring.
func matchesTypeTag(typeLine, tag string) bool {
	required, ok := typeRequirements[tag]
	if !ok {
		return strings.Contains(typeLine, tag)
	}
	for _, sub := range required {
		if !strings.Contains(typeLine, sub) {
			return false
		}
	}
	return true
}

// TypeTags lists the known type-filter tags, for UI enumeration.
func TypeTags() []string {
	tags := make([]string, 0, len(typeRequirements))
	for tag := range typeRequirements {
		tags = append(tags, tag)
	}
	return tags
}
