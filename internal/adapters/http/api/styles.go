// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/fitfindr/internal/domain/profile"
)

// StyleDependencies defines the interface for style helpers.
type StyleDependencies interface {
	SuggestStyles(ctx context.Context, partial string) []string
}

// StylesHandler handles style suggestion requests.
type StylesHandler struct {
	deps StyleDependencies
}

// NewStylesHandler creates a new styles handler.
func NewStylesHandler(deps StyleDependencies) *StylesHandler {
	return &StylesHandler{deps: deps}
}

type styleSuggestions struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
	Keywords    []string `json:"extracted_keywords"`
}

// HandleSuggest handles GET /styles/suggest?q=partial requests.
func (h *StylesHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	query := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, styleSuggestions{
		Query:       query,
		Suggestions: h.deps.SuggestStyles(r.Context(), query),
		Keywords:    profile.ExtractKeywords(query),
	})
}
