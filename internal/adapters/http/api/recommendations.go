// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/internal/domain/profile"
)

// RecommendationDependencies defines the interface for recommendation operations.
type RecommendationDependencies interface {
	ResolveProfile(ctx context.Context, req profile.Request) model.Profile
	Recommend(ctx context.Context, prof model.Profile, limit int) ([]model.ScoredItem, error)
	AssembleOutfits(ctx context.Context, items []model.ScoredItem) []model.Outfit
	Summarize(ctx context.Context, items []model.ScoredItem) model.RecommendationSummary
}

// RecommendationsHandler handles recommendation requests.
type RecommendationsHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(deps RecommendationDependencies) *RecommendationsHandler {
	return &RecommendationsHandler{deps: deps}
}

// recommendationRequest mirrors the POST /recommendations body.
type recommendationRequest struct {
	UserID      string   `json:"user_id"`
	Style       string   `json:"style"`
	BodyShape   string   `json:"body_shape,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	SkipOutfits bool     `json:"skip_outfits,omitempty"`
	ImageBase64 string   `json:"image_base64,omitempty"`
}

func (r recommendationRequest) validate() error {
	if err := profile.ValidateStyle(r.Style); err != nil {
		return err
	}
	if r.Limit < 0 {
		return ErrBadRequest
	}
	return nil
}

// recommendationResponse is the POST /recommendations reply.
type recommendationResponse struct {
	Profile         model.Profile               `json:"profile"`
	Recommendations []model.ScoredItem          `json:"recommendations"`
	Outfits         []model.Outfit              `json:"outfits,omitempty"`
	Summary         model.RecommendationSummary `json:"summary"`
}

// HandlePostRecommendations handles POST /recommendations requests.
func (h *RecommendationsHandler) HandlePostRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_recommendations"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		image = decoded
	}

	prof := h.deps.ResolveProfile(r.Context(), profile.Request{
		UserID:    req.UserID,
		Style:     req.Style,
		BodyShape: req.BodyShape,
		Colors:    req.Colors,
		Image:     image,
	})

	recommendations, err := h.deps.Recommend(r.Context(), prof, req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	resp := recommendationResponse{
		Profile:         prof,
		Recommendations: recommendations,
		Summary:         h.deps.Summarize(r.Context(), recommendations),
	}
	if !req.SkipOutfits {
		resp.Outfits = h.deps.AssembleOutfits(r.Context(), recommendations)
	}
	writeJSON(w, http.StatusOK, resp)
}
