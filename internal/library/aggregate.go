package library

import (
	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/config"
)

// CountBucket is a labeled owned-card count.
type CountBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SetProgress tracks completion of one set: distinct printings owned
// versus printings in the catalog.
type SetProgress struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Total int    `json:"total"`
	Owned int    `json:"owned"`
}

// PriceBucket is one bar of the owned-value histogram. Min is inclusive,
// Max exclusive; a nil Max means unbounded.
type PriceBucket struct {
	Label string   `json:"label"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max,omitempty"`
	Count int      `json:"count"`
}

// Stats is the aggregate summary for the dashboard.
type Stats struct {
	TotalOwned     int           `json:"totalOwned"`
	DistinctOwned  int           `json:"distinctOwned"`
	TotalValue     float64       `json:"totalValue"`
	ByType         []CountBucket `json:"byType"`
	ByRarity       []CountBucket `json:"byRarity"`
	SetProgress    []SetProgress `json:"setProgress"`
	PriceHistogram []PriceBucket `json:"priceHistogram"`
}

var statTypes = []string{"Creature", "Instant", "Sorcery", "Enchantment", "Artifact", "Land", "Planeswalker"}

var statRarities = []string{"common", "uncommon", "rare", "mythic"}

// PriceRanges is the fixed bucket layout shared by the price filter
// presets and the dashboard histogram.
var PriceRanges = []PriceBucket{
	{Label: "Under $1", Min: 0, Max: ptr(1)},
	{Label: "$1 - $5", Min: 1, Max: ptr(5)},
	{Label: "$5 - $10", Min: 5, Max: ptr(10)},
	{Label: "$10 - $20", Min: 10, Max: ptr(20)},
	{Label: "$20 - $50", Min: 20, Max: ptr(50)},
	{Label: "$50+", Min: 50},
}

func ptr(v float64) *float64 { return &v }

// Aggregate computes dashboard summaries over the catalog and ownership
// maps. Quantities count every owned copy, regular and foil alike.
func Aggregate(cards []catalog.Card, owned Ownership, universe *config.Universe) Stats {
	stats := Stats{}

	byType := make(map[string]int)
	byRarity := make(map[string]int)
	setTotals := make(map[string]*SetProgress)
	histogram := make([]PriceBucket, len(PriceRanges))
	copy(histogram, PriceRanges)

	if universe != nil {
		for _, s := range universe.Sets {
			sp := &SetProgress{Code: s.Code, Name: s.Name}
			setTotals[s.Code] = sp
		}
	}

	for i := range cards {
		card := &cards[i]
		qty := owned.Total(card.ID)

		if sp, ok := setTotals[card.SetCode]; ok {
			sp.Total++
			if qty > 0 {
				sp.Owned++
			}
		}

		if qty == 0 {
			continue
		}

		stats.TotalOwned += qty
		stats.DistinctOwned++
		stats.TotalValue += float64(owned.Regular[card.ID])*card.RegularPrice() +
			float64(owned.Foil[card.ID])*card.FoilPrice()

		typeLine := card.PrimaryTypeLine()
		for _, t := range statTypes {
			if matchesTypeTag(typeLine, t) {
				byType[t] += qty
			}
		}
		byRarity[card.Rarity] += qty

		price := card.EffectivePrice()
		for b := range histogram {
			if price >= histogram[b].Min && (histogram[b].Max == nil || price < *histogram[b].Max) {
				histogram[b].Count++
				break
			}
		}
	}

	for _, t := range statTypes {
		if byType[t] > 0 {
			stats.ByType = append(stats.ByType, CountBucket{Name: t, Count: byType[t]})
		}
	}
	for _, r := range statRarities {
		stats.ByRarity = append(stats.ByRarity, CountBucket{Name: r, Count: byRarity[r]})
	}
	if universe != nil {
		for _, s := range universe.Sets {
			stats.SetProgress = append(stats.SetProgress, *setTotals[s.Code])
		}
	}
	stats.PriceHistogram = histogram

	return stats
}

// TotalValue computes the collection's market value: regular quantities
// at the regular price plus foil quantities at the foil price.
func TotalValue(cards []catalog.Card, owned Ownership) float64 {
	var total float64
	for i := range cards {
		card := &cards[i]
		total += float64(owned.Regular[card.ID])*card.RegularPrice() +
			float64(owned.Foil[card.ID])*card.FoilPrice()
	}
	return total
}
