package deckio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/collection"
)

func testIndex() *catalog.Index {
	return catalog.NewIndex([]catalog.Card{
		{ID: "id-sol-ring", Name: "Sol Ring", SetCode: "cmm", CollectorNumber: "464"},
		{ID: "id-bolt", Name: "Lightning Bolt", SetCode: "2x2", CollectorNumber: "117"},
		{ID: "id-opt", Name: "Opt", SetCode: "dom", CollectorNumber: "60"},
	})
}

func TestImportBasic(t *testing.T) {
	idx := testIndex()
	result := Import("2 Sol Ring (CMM) 464\n1 Lightning Bolt (2X2) 117 *F*\n", idx)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Matched)
	require.Len(t, result.Items, 2)

	assert.Equal(t, collection.ImportItem{CardID: "id-sol-ring", Qty: 2}, result.Items[0])
	assert.Equal(t, collection.ImportItem{CardID: "id-bolt", Qty: 1, Foil: true}, result.Items[1])
}

func TestImportSkipsUnresolvable(t *testing.T) {
	idx := testIndex()
	text := "2 Sol Ring (CMM) 464\n" +
		"not a decklist line\n" +
		"3 Unknown Card (ZZZ) 1\n" +
		"\n" +
		"1 Opt (DOM) 60\n"

	result := Import(text, idx)
	assert.Equal(t, 4, result.Total, "blank lines do not count")
	assert.Equal(t, 2, result.Matched)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "id-sol-ring", result.Items[0].CardID)
	assert.Equal(t, "id-opt", result.Items[1].CardID)
}

func TestImportSetCodeCaseInsensitive(t *testing.T) {
	idx := testIndex()
	result := Import("1 Opt (dom) 60", idx)
	assert.Equal(t, 1, result.Matched)
}

func TestImportZeroQuantitySkipped(t *testing.T) {
	idx := testIndex()
	result := Import("0 Sol Ring (CMM) 464", idx)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Matched)
}

func TestExportOrdering(t *testing.T) {
	idx := testIndex()
	state := collection.NewState()
	state.Cards["id-sol-ring"] = 2
	state.Cards["id-opt"] = 1
	state.FoilCards["id-bolt"] = 1

	got := Export(state, idx)
	want := "1 Opt (DOM) 60\n" +
		"2 Sol Ring (CMM) 464\n" +
		"1 Lightning Bolt (2X2) 117 *F*\n"
	assert.Equal(t, want, got)
}

func TestExportSkipsUnknownIDs(t *testing.T) {
	idx := testIndex()
	state := collection.NewState()
	state.Cards["id-gone"] = 3
	assert.Empty(t, Export(state, idx))
}

// A foil export line must re-import as a foil of the same printing.
func TestRoundTrip(t *testing.T) {
	idx := testIndex()
	state := collection.NewState()
	state.Cards["id-sol-ring"] = 2
	state.FoilCards["id-sol-ring"] = 1

	result := Import(Export(state, idx), idx)
	require.Equal(t, 2, result.Matched)

	rebuilt := collection.NewState()
	for _, item := range result.Items {
		if item.Foil {
			rebuilt.FoilCards[item.CardID] += item.Qty
		} else {
			rebuilt.Cards[item.CardID] += item.Qty
		}
	}
	assert.Equal(t, 2, rebuilt.Cards["id-sol-ring"])
	assert.Equal(t, 1, rebuilt.FoilCards["id-sol-ring"])
}
