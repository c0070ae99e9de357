package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cardbinder/cardbinder/internal/api/response"
	"github.com/cardbinder/cardbinder/internal/deckio"
	"github.com/cardbinder/cardbinder/internal/session"
)

// maxImportBytes bounds decklist uploads.
const maxImportBytes = 1 << 20

// CollectionHandler serves the caller's collection document.
type CollectionHandler struct {
	sessions *session.Manager
}

// NewCollectionHandler creates a collection handler.
func NewCollectionHandler(sessions *session.Manager) *CollectionHandler {
	return &CollectionHandler{sessions: sessions}
}

// Get handles GET /api/v1/collection.
func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}
	response.Success(w, s.Store.Snapshot())
}

type adjustRequest struct {
	CardID string `json:"cardId"`
	Delta  int    `json:"delta"`
	Foil   bool   `json:"foil"`
}

// Adjust handles POST /api/v1/collection/adjust.
func (h *CollectionHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if _, found := s.Catalog.ByID(req.CardID); !found {
		response.NotFound(w, fmt.Errorf("card %s not found", req.CardID))
		return
	}
	if req.Delta == 0 {
		response.BadRequest(w, errors.New("delta must be non-zero"))
		return
	}

	quantity := s.Store.AdjustQuantity(req.CardID, req.Delta, req.Foil)
	response.Success(w, map[string]any{
		"cardId":   req.CardID,
		"foil":     req.Foil,
		"quantity": quantity,
	})
}

type setQuantityRequest struct {
	CardID   string `json:"cardId"`
	Quantity int    `json:"quantity"`
	Foil     bool   `json:"foil"`
}

// SetQuantity handles PUT /api/v1/collection/quantity.
func (h *CollectionHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if _, found := s.Catalog.ByID(req.CardID); !found {
		response.NotFound(w, fmt.Errorf("card %s not found", req.CardID))
		return
	}

	quantity := s.Store.SetQuantity(req.CardID, req.Quantity, req.Foil)
	response.Success(w, map[string]any{
		"cardId":   req.CardID,
		"foil":     req.Foil,
		"quantity": quantity,
	})
}

// Import handles POST /api/v1/collection/import. The body is raw
// decklist text; resolved lines are added on top of existing counts.
func (h *CollectionHandler) Import(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		response.BadRequest(w, fmt.Errorf("failed to read import body: %w", err))
		return
	}

	result := deckio.Import(string(body), s.Catalog)
	s.Store.Import(result.Items)
	response.Success(w, result)
}

// Export handles GET /api/v1/collection/export, returning decklist text.
func (h *CollectionHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	text := deckio.Export(s.Store.Snapshot(), s.Catalog)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="collection.txt"`)
	_, _ = io.WriteString(w, text)
}
