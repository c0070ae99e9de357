package decks

// builtinSummaries holds narrative metadata for the starter decks that
// ships with the binary. The dataset only carries card rows; strategy
// text lives here.
var builtinSummaries = map[string]Summary{
	"Aang (0001)": {
		Strategy:  "Go wide with airbender tokens, then close with evasive threats.",
		Strengths: "Resilient board presence and cheap flyers.",
		Weakness:  "Struggles against repeated board wipes.",
		Pairings:  []string{"Katara (0002)", "Appa (0005)"},
		Summary:   "A tempo deck built around the Avatar himself.",
	},
	"Katara (0002)": {
		Strategy:  "Control the board with bounce and tap effects until the late game.",
		Strengths: "Strong defensive spells.",
		Weakness:  "Slow clock.",
		Pairings:  []string{"Aang (0001)"},
		Summary:   "A patient waterbending control shell.",
	},
}

// fallbackDecks returns the hardcoded deck list used when the dataset is
// missing or malformed. Returns a fresh copy each call; callers may
// resolve and annotate entries in place.
func fallbackDecks() []Deck {
	return []Deck{
		{
			Title:  "Aang (0001)",
			Source: defaultSource,
			Cards: []CardEntry{
				{Name: "Aang, Airbending Master", Qty: 1, Set: "jtla", CollectorNumber: "1"},
				{Name: "Air Nomad Monk", Qty: 2, Set: "jtla", CollectorNumber: "14"},
				{Name: "Gust of Wind", Qty: 2, Set: "jtla", CollectorNumber: "22"},
				{Name: "Plains", Qty: 8, Set: "jtla", CollectorNumber: "120"},
			},
			Strategy:  builtinSummaries["Aang (0001)"].Strategy,
			Strengths: builtinSummaries["Aang (0001)"].Strengths,
			Weakness:  builtinSummaries["Aang (0001)"].Weakness,
			Pairings:  builtinSummaries["Aang (0001)"].Pairings,
			Summary:   builtinSummaries["Aang (0001)"].Summary,
		},
		{
			Title:  "Katara (0002)",
			Source: defaultSource,
			Cards: []CardEntry{
				{Name: "Katara, Water Tribe's Hope", Qty: 1, Set: "jtla", CollectorNumber: "2"},
				{Name: "Waterbending Student", Qty: 2, Set: "jtla", CollectorNumber: "31"},
				{Name: "Healing Waters", Qty: 2, Set: "jtla", CollectorNumber: "38"},
				{Name: "Island", Qty: 8, Set: "jtla", CollectorNumber: "121"},
			},
			Strategy:  builtinSummaries["Katara (0002)"].Strategy,
			Strengths: builtinSummaries["Katara (0002)"].Strengths,
			Weakness:  builtinSummaries["Katara (0002)"].Weakness,
			Pairings:  builtinSummaries["Katara (0002)"].Pairings,
			Summary:   builtinSummaries["Katara (0002)"].Summary,
		},
	}
}
