package catalog

import (
	"strings"

	"github.com/cardbinder/cardbinder/internal/scryfall"
)

// Normalize converts raw API records into catalog cards. The external
// source is inconsistent about set code casing, so the set code is
// lowercased on every record; downstream filters compare against
// lowercase codes. All other fields pass through unchanged and
// multi-printing duplicates are retained.
func Normalize(raw []scryfall.Card) []Card {
	cards := make([]Card, 0, len(raw))
	for _, r := range raw {
		cards = append(cards, Card{
			ID:              r.ID,
			OracleID:        r.OracleID,
			Name:            r.Name,
			ManaCost:        r.ManaCost,
			CMC:             r.CMC,
			TypeLine:        r.TypeLine,
			OracleText:      r.OracleText,
			Colors:          r.Colors,
			ColorIdentity:   r.ColorIdentity,
			Power:           r.Power,
			Toughness:       r.Toughness,
			ImageURIs:       r.ImageURIs,
			SetCode:         strings.ToLower(r.SetCode),
			SetName:         r.SetName,
			CollectorNumber: r.CollectorNumber,
			Rarity:          r.Rarity,
			Faces:           r.CardFaces,
			Legalities:      r.Legalities,
			Prices:          r.Prices,
			PurchaseURIs:    r.PurchaseURIs,
			ScryfallURI:     r.ScryfallURI,
		})
	}
	return cards
}
