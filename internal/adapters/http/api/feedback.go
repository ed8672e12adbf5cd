// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/fitfindr/internal/domain/feedback"
	"github.com/okian/fitfindr/internal/domain/model"
)

// FeedbackDependencies defines the interface for feedback operations.
type FeedbackDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	RecordFeedback(ctx context.Context, userID, itemID string, kind model.FeedbackKind, extra map[string]any) (model.FeedbackEvent, error)
	UserFeedbackSummary(ctx context.Context, userID string) model.UserFeedbackSummary
	ItemFeedbackSummary(ctx context.Context, itemID string) model.ItemFeedbackSummary
	FeedbackPatterns(ctx context.Context) model.FeedbackPatterns
	Improvements(ctx context.Context, userID string) model.ImprovementReport
}

// FeedbackHandler handles feedback requests.
type FeedbackHandler struct {
	deps FeedbackDependencies
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps FeedbackDependencies) *FeedbackHandler {
	return &FeedbackHandler{deps: deps}
}

// feedbackRequest mirrors the POST /feedback body. EventID is optional; when
// present it makes retries idempotent.
type feedbackRequest struct {
	EventID    string         `json:"event_id,omitempty"`
	UserID     string         `json:"user_id"`
	ItemID     string         `json:"item_id"`
	Kind       string         `json:"feedback_type"`
	Additional map[string]any `json:"additional_data,omitempty"`
}

func (f feedbackRequest) validate() error {
	switch {
	case strings.TrimSpace(f.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(f.ItemID) == "":
		return errors.New("missing item_id")
	case strings.TrimSpace(f.Kind) == "":
		return errors.New("missing feedback_type")
	}
	return nil
}

type feedbackAck struct {
	Status    string              `json:"status"`
	Duplicate bool                `json:"duplicate"`
	Event     model.FeedbackEvent `json:"event,omitzero"`
}

// HandlePostFeedback handles POST /feedback requests.
func (h *FeedbackHandler) HandlePostFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_feedback"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if req.EventID != "" && h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, feedbackAck{Status: "duplicate", Duplicate: true})
		return
	}

	kind := model.FeedbackKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	event, err := h.deps.RecordFeedback(r.Context(), req.UserID, req.ItemID, kind, req.Additional)
	if err != nil {
		// Roll back the "seen" status so the caller can retry
		if req.EventID != "" {
			h.deps.Unrecord(r.Context(), req.EventID)
		}
		if errors.Is(err, feedback.ErrInvalidKind) || errors.Is(err, feedback.ErrMissingID) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, feedbackAck{Status: "recorded", Duplicate: false, Event: event})
}

// HandleGetUser handles GET /feedback/users/{user_id} and
// GET /feedback/users/{user_id}/improvements requests.
func (h *FeedbackHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_user_feedback"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/feedback/users/")
	userID, rest, hasRest := strings.Cut(path, "/")
	if userID == "" || (hasRest && rest != "improvements") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if hasRest {
		writeJSON(w, http.StatusOK, h.deps.Improvements(r.Context(), userID))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.UserFeedbackSummary(r.Context(), userID))
}

// HandleGetItem handles GET /feedback/items/{item_id} requests.
func (h *FeedbackHandler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_item_feedback"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	itemID := strings.TrimPrefix(r.URL.Path, "/feedback/items/")
	if itemID == "" || strings.Contains(itemID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ItemFeedbackSummary(r.Context(), itemID))
}

// HandleGetPatterns handles GET /feedback/patterns requests.
func (h *FeedbackHandler) HandleGetPatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.FeedbackPatterns(r.Context()))
}
