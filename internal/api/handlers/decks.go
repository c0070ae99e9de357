package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder/internal/api/response"
	"github.com/cardbinder/cardbinder/internal/catalog"
	"github.com/cardbinder/cardbinder/internal/collection"
	"github.com/cardbinder/cardbinder/internal/decks"
	"github.com/cardbinder/cardbinder/internal/session"
)

// DecksHandler serves predefined and user-built decks.
type DecksHandler struct {
	sessions *session.Manager
}

// NewDecksHandler creates a decks handler.
func NewDecksHandler(sessions *session.Manager) *DecksHandler {
	return &DecksHandler{sessions: sessions}
}

// deckCardView is one resolved entry of a deck list.
type deckCardView struct {
	decks.CardEntry
	Card  *catalog.Card `json:"card,omitempty"`
	Owned int           `json:"owned"`
}

// deckView is a predefined deck with its entries resolved against the
// catalog and the caller's collection.
type deckView struct {
	decks.Deck
	Collected  bool           `json:"collected"`
	ThemeCard  *catalog.Card  `json:"themeCard,omitempty"`
	Resolved   []deckCardView `json:"resolved"`
	OwnedCount int            `json:"ownedCount"`
	TotalCount int            `json:"totalCount"`
}

// List handles GET /api/v1/decks.
func (h *DecksHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	state := s.Store.Snapshot()
	list := s.Decks()

	views := make([]deckView, 0, len(list))
	for _, deck := range list {
		views = append(views, buildDeckView(deck, s, state))
	}
	response.Success(w, views)
}

// Get handles GET /api/v1/decks/{title}.
func (h *DecksHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	title := chi.URLParam(r, "title")
	for _, deck := range s.Decks() {
		if deck.Title == title {
			response.Success(w, buildDeckView(deck, s, s.Store.Snapshot()))
			return
		}
	}
	response.NotFound(w, fmt.Errorf("deck %q not found", title))
}

// ToggleCollected handles POST /api/v1/decks/{title}/toggle.
func (h *DecksHandler) ToggleCollected(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	title := chi.URLParam(r, "title")
	for _, deck := range s.Decks() {
		if deck.Title == title {
			collected := s.Store.ToggleDeckCollected(title)
			response.Success(w, map[string]any{"title": title, "collected": collected})
			return
		}
	}
	response.NotFound(w, fmt.Errorf("deck %q not found", title))
}

type customDeckRequest struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Cards       map[string]int `json:"cards"`
	CommanderID string         `json:"commanderId,omitempty"`
	CoverCardID string         `json:"coverCardId,omitempty"`
}

// ListCustom handles GET /api/v1/decks/custom.
func (h *DecksHandler) ListCustom(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}
	response.Success(w, s.Store.Snapshot().CustomDecks)
}

// SaveCustom handles POST /api/v1/decks/custom, creating or updating.
func (h *DecksHandler) SaveCustom(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req customDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}
	for cardID := range req.Cards {
		if _, found := s.Catalog.ByID(cardID); !found {
			response.BadRequest(w, fmt.Errorf("unknown card %s", cardID))
			return
		}
	}

	saved, err := s.Store.SaveCustomDeck(collection.CustomDeck{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Cards:       req.Cards,
		CommanderID: req.CommanderID,
		CoverCardID: req.CoverCardID,
	})
	if errors.Is(err, collection.ErrDeckNotFound) {
		response.NotFound(w, err)
		return
	}
	if req.ID == "" {
		response.Created(w, saved)
		return
	}
	response.Success(w, saved)
}

// DeleteCustom handles DELETE /api/v1/decks/custom/{id}.
func (h *DecksHandler) DeleteCustom(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.Store.DeleteCustomDeck(id); errors.Is(err, collection.ErrDeckNotFound) {
		response.NotFound(w, err)
		return
	} else if err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}

func buildDeckView(deck decks.Deck, s *session.Session, state collection.State) deckView {
	view := deckView{
		Deck:      deck,
		Collected: state.Decks[deck.Title],
	}
	if theme, found := decks.ThemeCard(deck, s.Catalog, s.Universe.DeckSet); found {
		view.ThemeCard = &theme
	}

	view.Resolved = make([]deckCardView, 0, len(deck.Cards))
	for _, entry := range deck.Cards {
		cv := deckCardView{CardEntry: entry}
		if card, found := decks.Resolve(entry, s.Catalog); found {
			c := card
			cv.Card = &c
			cv.Owned = state.TotalQuantity(card.ID)
			if cv.Owned > entry.Qty {
				cv.Owned = entry.Qty
			}
		}
		view.TotalCount += entry.Qty
		view.OwnedCount += cv.Owned
	}
	return view
}
