package handlers

import (
	"net/http"

	"github.com/cardbinder/cardbinder/internal/api/response"
	"github.com/cardbinder/cardbinder/internal/rules"
)

// RulesHandler serves the parsed comprehensive rules. The tree is
// parsed once at startup and shared read-only.
type RulesHandler struct {
	sections []rules.Section
}

// NewRulesHandler creates a rules handler over a parsed rules tree.
func NewRulesHandler(sections []rules.Section) *RulesHandler {
	return &RulesHandler{sections: sections}
}

// List handles GET /api/v1/rules, optionally narrowed by the q
// parameter.
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	result := rules.Search(h.sections, term)
	if result == nil {
		result = []rules.Section{}
	}
	response.Success(w, result)
}
