// Package decks builds the predefined deck list from the flat deck
// dataset and resolves deck entries back to catalog cards.
package decks

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
)

// CardEntry is one card reference inside a deck, with an explicit
// quantity. (name, set, collectorNumber) is unique within a deck.
type CardEntry struct {
	Name            string `json:"name"`
	Qty             int    `json:"qty"`
	Set             string `json:"set,omitempty"`
	CollectorNumber string `json:"collectorNumber,omitempty"`
}

// Deck is a predefined, named card list with optional narrative metadata.
type Deck struct {
	Title     string      `json:"title"`
	Source    string      `json:"source"`
	Cards     []CardEntry `json:"cards"`
	ThemeCard string      `json:"themeCard,omitempty"`
	Strategy  string      `json:"strategy,omitempty"`
	Strengths string      `json:"strengths,omitempty"`
	Weakness  string      `json:"weaknesses,omitempty"`
	Pairings  []string    `json:"pairings,omitempty"`
	Summary   string      `json:"summary,omitempty"`
}

// Row is one record of the flat deck dataset: a deck name paired with a
// single card reference. A card appearing N times in a deck occupies N
// rows.
type Row struct {
	DeckName            string `json:"deck_name"`
	DeckSource          string `json:"deck_source"`
	CardTitle           string `json:"card_title"`
	CardSetCode         string `json:"card_set_code"`
	CardCollectorNumber string `json:"card_collector_number"`
}

// Summary carries narrative metadata merged into a deck on first
// encounter, keyed by deck name.
type Summary struct {
	ThemeCard string   `json:"themeCard,omitempty"`
	Strategy  string   `json:"strategy,omitempty"`
	Strengths string   `json:"strengths,omitempty"`
	Weakness  string   `json:"weaknesses,omitempty"`
	Pairings  []string `json:"pairings,omitempty"`
	Summary   string   `json:"summary,omitempty"`
}

const defaultSource = "Jumpstart Boosters"

// Hydrate folds flat rows into deck entities. Rows are grouped by deck
// name in encounter order; a repeated (name, set, collectorNumber) triple
// within a deck increments the existing entry's quantity instead of
// appending a duplicate. The result is sorted by title.
func Hydrate(rows []Row, summaries map[string]Summary) []Deck {
	order := make([]string, 0)
	byName := make(map[string]*Deck)

	for _, row := range rows {
		deck, ok := byName[row.DeckName]
		if !ok {
			source := row.DeckSource
			if source == "" {
				source = defaultSource
			}
			deck = &Deck{
				Title:  row.DeckName,
				Source: source,
			}
			if s, ok := summaries[row.DeckName]; ok {
				deck.ThemeCard = s.ThemeCard
				deck.Strategy = s.Strategy
				deck.Strengths = s.Strengths
				deck.Weakness = s.Weakness
				deck.Pairings = s.Pairings
				deck.Summary = s.Summary
			}
			byName[row.DeckName] = deck
			order = append(order, row.DeckName)
		}

		merged := false
		for i := range deck.Cards {
			c := &deck.Cards[i]
			if c.Name == row.CardTitle && c.Set == row.CardSetCode && c.CollectorNumber == row.CardCollectorNumber {
				c.Qty++
				merged = true
				break
			}
		}
		if !merged {
			deck.Cards = append(deck.Cards, CardEntry{
				Name:            row.CardTitle,
				Qty:             1,
				Set:             row.CardSetCode,
				CollectorNumber: row.CardCollectorNumber,
			})
		}
	}

	result := make([]Deck, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Title < result[j].Title
	})
	return result
}

// Loader reads the flat deck dataset from disk and hydrates it. A
// missing or malformed dataset falls back to the built-in deck list so
// browsing never shows zero decks.
type Loader struct {
	path      string
	summaries map[string]Summary
	logger    *slog.Logger
}

// NewLoader creates a deck loader for the given dataset path.
func NewLoader(path string, summaries map[string]Summary, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if summaries == nil {
		summaries = builtinSummaries
	}
	return &Loader{path: path, summaries: summaries, logger: logger}
}

// Load reads and hydrates the dataset. It never returns an empty deck
// list while fallback data exists.
func (l *Loader) Load(ctx context.Context) []Deck {
	if l.path == "" {
		return fallbackDecks()
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		l.logger.Warn("deck dataset unavailable, using built-in decks",
			"path", l.path,
			"error", err)
		return fallbackDecks()
	}

	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		l.logger.Warn("deck dataset malformed, using built-in decks",
			"path", l.path,
			"error", err)
		return fallbackDecks()
	}

	decks := Hydrate(rows, l.summaries)
	if len(decks) == 0 {
		return fallbackDecks()
	}

	l.logger.Info("deck dataset loaded", "path", l.path, "decks", len(decks))
	return decks
}
