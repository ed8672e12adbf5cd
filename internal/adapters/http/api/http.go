// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/internal/domain/profile"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Profile and recommendation operations.
	ResolveProfile(ctx context.Context, req profile.Request) model.Profile
	Recommend(ctx context.Context, prof model.Profile, limit int) ([]model.ScoredItem, error)
	AssembleOutfits(ctx context.Context, items []model.ScoredItem) []model.Outfit
	Summarize(ctx context.Context, items []model.ScoredItem) model.RecommendationSummary

	// Feedback operations. SeenAndRecord/Unrecord provide event idempotency.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	RecordFeedback(ctx context.Context, userID, itemID string, kind model.FeedbackKind, extra map[string]any) (model.FeedbackEvent, error)
	UserFeedbackSummary(ctx context.Context, userID string) model.UserFeedbackSummary
	ItemFeedbackSummary(ctx context.Context, itemID string) model.ItemFeedbackSummary
	TrendingItems(ctx context.Context, limit int) []model.TrendingItem
	FeedbackPatterns(ctx context.Context) model.FeedbackPatterns
	Improvements(ctx context.Context, userID string) model.ImprovementReport

	// Style helpers.
	SuggestStyles(ctx context.Context, partial string) []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler          *HealthHandler
	statsHandler           *StatsHandler
	recommendationsHandler *RecommendationsHandler
	feedbackHandler        *FeedbackHandler
	trendingHandler        *TrendingHandler
	stylesHandler          *StylesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:          NewHealthHandler(),
		statsHandler:           NewStatsHandler(statsProvider),
		recommendationsHandler: NewRecommendationsHandler(deps),
		feedbackHandler:        NewFeedbackHandler(deps),
		trendingHandler:        NewTrendingHandler(deps),
		stylesHandler:          NewStylesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/recommendations", MetricsMiddleware(s.recommendationsHandler.HandlePostRecommendations, "recommendations"))
	mux.HandleFunc("/feedback/patterns", MetricsMiddleware(s.feedbackHandler.HandleGetPatterns, "feedback_patterns"))
	mux.HandleFunc("/feedback/users/", MetricsMiddleware(s.feedbackHandler.HandleGetUser, "feedback_users"))
	mux.HandleFunc("/feedback/items/", MetricsMiddleware(s.feedbackHandler.HandleGetItem, "feedback_items"))
	mux.HandleFunc("/feedback", MetricsMiddleware(s.feedbackHandler.HandlePostFeedback, "feedback"))
	mux.HandleFunc("/trending", MetricsMiddleware(s.trendingHandler.HandleGetTrending, "trending"))
	mux.HandleFunc("/styles/suggest", MetricsMiddleware(s.stylesHandler.HandleSuggest, "styles_suggest"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
