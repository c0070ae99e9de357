// Package collection tracks owned card quantities, collected decks, and
// user-built deck lists, persisting changes through a debounced writer.
package collection

import "time"

// CustomDeck is a user-authored deck list stored alongside the
// collection document.
type CustomDeck struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Cards       map[string]int `json:"cards"`
	CommanderID string         `json:"commanderId,omitempty"`
	CoverCardID string         `json:"coverCardId,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// State is the full collection document for one user in one universe.
// Card maps key by card ID; a key is present only while its count is
// positive.
type State struct {
	Cards       map[string]int  `json:"cards"`
	FoilCards   map[string]int  `json:"foilCards"`
	Decks       map[string]bool `json:"decks"`
	CustomDecks []CustomDeck    `json:"customDecks"`
}

// NewState returns an empty collection document.
func NewState() State {
	return State{
		Cards:     make(map[string]int),
		FoilCards: make(map[string]int),
		Decks:     make(map[string]bool),
	}
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (s State) Clone() State {
	out := State{
		Cards:     make(map[string]int, len(s.Cards)),
		FoilCards: make(map[string]int, len(s.FoilCards)),
		Decks:     make(map[string]bool, len(s.Decks)),
	}
	for k, v := range s.Cards {
		out.Cards[k] = v
	}
	for k, v := range s.FoilCards {
		out.FoilCards[k] = v
	}
	for k, v := range s.Decks {
		out.Decks[k] = v
	}
	if len(s.CustomDecks) > 0 {
		out.CustomDecks = make([]CustomDeck, len(s.CustomDecks))
		copy(out.CustomDecks, s.CustomDecks)
		for i := range out.CustomDecks {
			cards := make(map[string]int, len(s.CustomDecks[i].Cards))
			for k, v := range s.CustomDecks[i].Cards {
				cards[k] = v
			}
			out.CustomDecks[i].Cards = cards
		}
	}
	return out
}

// Quantity returns the owned count for a card in one finish.
func (s State) Quantity(cardID string, foil bool) int {
	if foil {
		return s.FoilCards[cardID]
	}
	return s.Cards[cardID]
}

// TotalQuantity returns the owned count across both finishes.
func (s State) TotalQuantity(cardID string) int {
	return s.Cards[cardID] + s.FoilCards[cardID]
}
