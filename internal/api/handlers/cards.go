package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder/internal/api/response"
	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/library"
	"github.com/cardbinder/cardbinder/internal/scryfall"
	"github.com/cardbinder/cardbinder/internal/session"
)

const (
	defaultPageSize = 60
	maxPageSize     = 500
)

// PriceClient fetches a single card from the external database for a
// live price check.
type PriceClient interface {
	GetCard(ctx context.Context, id string) (*scryfall.Card, error)
}

// CardsHandler serves the filtered library view over the active
// universe's catalog.
type CardsHandler struct {
	sessions *session.Manager
	prices   PriceClient
}

// NewCardsHandler creates a cards handler.
func NewCardsHandler(sessions *session.Manager, prices PriceClient) *CardsHandler {
	return &CardsHandler{sessions: sessions, prices: prices}
}

// cardView augments a catalog card with the caller's owned counts.
type cardView struct {
	catalog.Card
	Quantity     int `json:"quantity"`
	FoilQuantity int `json:"foilQuantity"`
}

// List handles GET /api/v1/cards. Filters arrive as query parameters;
// results are paginated after filtering and sorting.
func (h *CardsHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	filters, err := parseFilters(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	state := s.Store.Snapshot()
	owned := library.Ownership{Regular: state.Cards, Foil: state.FoilCards}
	ranker := library.SetRankFunc(s.Universe.SetRank)

	cards := library.Apply(s.Catalog.Cards(), filters, owned, ranker)

	page, pageSize := parsePage(r)
	total := len(cards)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	views := make([]cardView, 0, end-start)
	for _, c := range cards[start:end] {
		views = append(views, cardView{
			Card:         c,
			Quantity:     state.Cards[c.ID],
			FoilQuantity: state.FoilCards[c.ID],
		})
	}
	response.Paginated(w, views, page, pageSize, total)
}

// Get handles GET /api/v1/cards/{id}.
func (h *CardsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	card, found := s.Catalog.ByID(id)
	if !found {
		response.NotFound(w, fmt.Errorf("card %s not found", id))
		return
	}

	state := s.Store.Snapshot()
	response.Success(w, cardView{
		Card:         card,
		Quantity:     state.Cards[card.ID],
		FoilQuantity: state.FoilCards[card.ID],
	})
}

// Price handles GET /api/v1/cards/{id}/price: a live price lookup
// against the external database, bypassing the cached catalog.
func (h *CardsHandler) Price(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if _, found := s.Catalog.ByID(id); !found {
		response.NotFound(w, fmt.Errorf("card %s not found", id))
		return
	}

	fresh, err := h.prices.GetCard(r.Context(), id)
	if err != nil {
		if scryfall.IsNotFound(err) {
			response.NotFound(w, err)
			return
		}
		response.Error(w, http.StatusBadGateway, fmt.Errorf("price lookup failed: %w", err))
		return
	}
	response.Success(w, map[string]any{
		"cardId": id,
		"prices": fresh.Prices,
	})
}

// TypeTags handles GET /api/v1/cards/types: the known type filter tags.
func (h *CardsHandler) TypeTags(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, library.TypeTags())
}

func parseFilters(r *http.Request) (library.Filters, error) {
	q := r.URL.Query()
	f := library.DefaultFilters()

	f.Search = q.Get("search")
	f.Rarity = q.Get("rarity")
	f.Set = q.Get("set")
	f.ManaValue = q.Get("cmc")
	if types := q.Get("types"); types != "" {
		f.Types = strings.Split(types, ",")
	}
	if colors := q.Get("colors"); colors != "" {
		f.Colors = strings.Split(colors, ",")
	}

	switch status := q.Get("ownership"); status {
	case "", string(library.OwnershipAll):
	case string(library.OwnershipOwned):
		f.Ownership = library.OwnershipOwned
	case string(library.OwnershipMissing):
		f.Ownership = library.OwnershipMissing
	default:
		return f, fmt.Errorf("unknown ownership status %q", status)
	}

	switch key := q.Get("sort"); key {
	case "", string(library.SortReleaseOrder):
	case string(library.SortName):
		f.Sort = library.SortName
	case string(library.SortManaValue):
		f.Sort = library.SortManaValue
	case string(library.SortPrice):
		f.Sort = library.SortPrice
	default:
		return f, fmt.Errorf("unknown sort key %q", key)
	}
	if order := q.Get("order"); order == string(library.OrderDesc) {
		f.Order = library.OrderDesc
	}

	var err error
	if f.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		return f, err
	}
	return f, nil
}

func parsePrice(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", raw)
	}
	return &v, nil
}

func parsePage(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, defaultPageSize
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxPageSize {
			pageSize = v
		}
	}
	return page, pageSize
}

// activeSession resolves the caller's session, writing the error
// response itself when there is none.
func activeSession(w http.ResponseWriter, r *http.Request, m *session.Manager) (*session.Session, bool) {
	userID, ok := UserID(r.Context())
	if !ok {
		response.Unauthorized(w, errors.New("authentication required"))
		return nil, false
	}
	s, err := m.Active(userID)
	if errors.Is(err, session.ErrNoSession) {
		response.BadRequest(w, errors.New("no active universe; activate one first"))
		return nil, false
	}
	if err != nil {
		response.InternalError(w, err)
		return nil, false
	}
	return s, true
}
