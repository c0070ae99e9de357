// Package catalog holds the card entities for the active universe and the
// normalization step that builds them from raw API records.
package catalog

import (
	"strconv"

	"github.com/cardbinder/cardbinder/internal/scryfall"
)

// Card is a single printing in the catalog. The catalog intentionally
// keeps every printing of a name; deduplicating to an oracle view would
// break the variant browser and release-order sorting.
type Card struct {
	ID       string `json:"id"`
	OracleID string `json:"oracle_id"`

	Name          string              `json:"name"`
	ManaCost      string              `json:"mana_cost,omitempty"`
	CMC           float64             `json:"cmc"`
	TypeLine      string              `json:"type_line"`
	OracleText    string              `json:"oracle_text,omitempty"`
	Colors        []string            `json:"colors,omitempty"`
	ColorIdentity []string            `json:"color_identity"`
	Power         string              `json:"power,omitempty"`
	Toughness     string              `json:"toughness,omitempty"`
	ImageURIs     *scryfall.ImageURIs `json:"image_uris,omitempty"`

	SetCode         string `json:"set"`
	SetName         string `json:"set_name"`
	CollectorNumber string `json:"collector_number"`
	Rarity          string `json:"rarity"`

	Faces []scryfall.CardFace `json:"card_faces,omitempty"`

	Legalities map[string]string `json:"legalities,omitempty"`
	Prices     scryfall.Prices   `json:"prices"`

	PurchaseURIs map[string]string `json:"purchase_uris,omitempty"`
	ScryfallURI  string            `json:"scryfall_uri,omitempty"`
}

// PrimaryTypeLine returns the card's type line, falling back to the first
// face for multi-faced cards.
func (c *Card) PrimaryTypeLine() string {
	if c.TypeLine != "" {
		return c.TypeLine
	}
	if len(c.Faces) > 0 {
		return c.Faces[0].TypeLine
	}
	return ""
}

// PrimaryOracleText returns the card's rules text, falling back to the
// first face for multi-faced cards.
func (c *Card) PrimaryOracleText() string {
	if c.OracleText != "" {
		return c.OracleText
	}
	if len(c.Faces) > 0 {
		return c.Faces[0].OracleText
	}
	return ""
}

// EffectivePrice returns the price used for filtering and sorting: the
// regular price when present and positive, otherwise the foil price.
func (c *Card) EffectivePrice() float64 {
	if reg := parsePrice(c.Prices.USD); reg > 0 {
		return reg
	}
	return parsePrice(c.Prices.USDFoil)
}

// RegularPrice returns the regular (non-foil) price, or 0 if unknown.
func (c *Card) RegularPrice() float64 {
	return parsePrice(c.Prices.USD)
}

// FoilPrice returns the foil price, or 0 if unknown.
func (c *Card) FoilPrice() float64 {
	return parsePrice(c.Prices.USDFoil)
}

func parsePrice(s *string) float64 {
	if s == nil {
		return 0
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return 0
	}
	return v
}
