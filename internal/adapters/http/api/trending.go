// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/fitfindr/internal/domain/model"
)

// TrendingDependencies defines the interface for trending queries.
type TrendingDependencies interface {
	TrendingItems(ctx context.Context, limit int) []model.TrendingItem
}

// TrendingHandler handles trending item requests.
type TrendingHandler struct {
	deps TrendingDependencies
}

// NewTrendingHandler creates a new trending handler.
func NewTrendingHandler(deps TrendingDependencies) *TrendingHandler {
	return &TrendingHandler{deps: deps}
}

// HandleGetTrending handles GET /trending?limit=N requests. The limit is
// optional; zero or absent applies the service default.
func (h *TrendingHandler) HandleGetTrending(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trending"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.deps.TrendingItems(r.Context(), limit))
}
