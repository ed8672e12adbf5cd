// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// BodyShape is one of a fixed small set of silhouette categories used to key
// the fit-compatibility table.
type BodyShape string

// Recognized body shapes.
const (
	ShapeHourglass        BodyShape = "hourglass"
	ShapePear             BodyShape = "pear"
	ShapeApple            BodyShape = "apple"
	ShapeRectangle        BodyShape = "rectangle"
	ShapeInvertedTriangle BodyShape = "inverted triangle"
	ShapeUnknown          BodyShape = "unknown"
)

// ParseBodyShape normalizes a free-text body shape into a known value.
// Unrecognized input maps to ShapeUnknown rather than an error.
func ParseBodyShape(s string) BodyShape {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourglass":
		return ShapeHourglass
	case "pear":
		return ShapePear
	case "apple":
		return ShapeApple
	case "rectangle":
		return ShapeRectangle
	case "inverted triangle", "inverted-triangle":
		return ShapeInvertedTriangle
	default:
		return ShapeUnknown
	}
}

// Category classifies a catalog item.
type Category string

// Recognized item categories.
const (
	CategoryTop         Category = "top"
	CategoryBottom      Category = "bottom"
	CategoryDress       Category = "dress"
	CategoryOuterwear   Category = "outerwear"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryOther       Category = "other"
)

// ParseCategory normalizes a free-text category. Unrecognized input maps to
// CategoryOther.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return CategoryTop
	case "bottom":
		return CategoryBottom
	case "dress":
		return CategoryDress
	case "outerwear":
		return CategoryOuterwear
	case "shoes":
		return CategoryShoes
	case "accessories":
		return CategoryAccessories
	default:
		return CategoryOther
	}
}

// OutfitCategories are the categories an outfit draws from, at most one item
// each, in outfit order.
var OutfitCategories = []Category{ //nolint:gochecknoglobals // immutable category order
	CategoryTop, CategoryBottom, CategoryOuterwear, CategoryShoes, CategoryAccessories,
}

// Profile is an immutable per-request snapshot of a user's body shape and
// style preferences, produced by the profile-analysis collaborator or derived
// from style defaults.
type Profile struct {
	ID                string    `json:"id"`
	PreferredStyle    string    `json:"preferred_style"`
	BodyShape         BodyShape `json:"body_shape"`
	HeightCategory    string    `json:"height_category"`
	Emphasize         []string  `json:"features_to_emphasize"`
	Minimize          []string  `json:"features_to_minimize"`
	Silhouettes       []string  `json:"recommended_silhouettes"`
	RecommendedColors []string  `json:"recommended_colors"`
	Confidence        float64   `json:"confidence_score"` // 0-100
}

// Item is a catalog item. Owned by the catalog collaborator; read-only here.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	SourceURL   string   `json:"source_url"`
	Style       string   `json:"style"`
	Category    Category `json:"category"`
	PriceRange  string   `json:"price_range"`
	Colors      []string `json:"colors"`
	Sizes       []string `json:"sizes"`
	Brand       string   `json:"brand"`
	Likes       int      `json:"likes"`
	Saves       int      `json:"saves"`
	Tags        []string `json:"tags"`
}

// Scores carries the per-component compatibility scores for one
// (profile, item) pair. All components are in [0,100]; Overall is the
// weighted combination rounded to one decimal.
type Scores struct {
	Fit         float64  `json:"fit_score"`
	Style       float64  `json:"style_score"`
	Trend       float64  `json:"trend_score"`
	Feedback    float64  `json:"feedback_score"`
	Overall     float64  `json:"overall_score"`
	Explanation string   `json:"explanation"`
	StylingTips []string `json:"styling_tips"`
}

// ScoredItem is an Item plus its computed scores. It is an ephemeral
// projection recomputed on every ranking request, never authoritative state.
type ScoredItem struct {
	Item
	Scores
	RecommendedAt time.Time `json:"recommended_at"`
}

// Outfit is a small bundle of scored items, at most one per outfit category.
type Outfit struct {
	ID            string       `json:"outfit_id"`
	Items         []ScoredItem `json:"items"`
	TotalScore    float64      `json:"total_score"`
	StyleCohesion float64      `json:"style_cohesion"`
	CreatedAt     time.Time    `json:"created_at"`
}

// FeedbackKind identifies the type of a feedback event.
type FeedbackKind string

// Recognized feedback kinds.
const (
	FeedbackLike    FeedbackKind = "like"
	FeedbackDislike FeedbackKind = "dislike"
	FeedbackSave    FeedbackKind = "save"
	FeedbackShare   FeedbackKind = "share"
	FeedbackView    FeedbackKind = "view"
)

// feedbackWeights are the fixed importance weights per kind.
var feedbackWeights = map[FeedbackKind]float64{ //nolint:gochecknoglobals // immutable weight table
	FeedbackLike:    1.0,
	FeedbackDislike: -0.8,
	FeedbackSave:    0.9,
	FeedbackShare:   0.7,
	FeedbackView:    0.3,
}

// Valid reports whether k is one of the five recognized kinds.
func (k FeedbackKind) Valid() bool {
	_, ok := feedbackWeights[k]
	return ok
}

// Weight returns the fixed importance weight for k, or 0 for unknown kinds.
func (k FeedbackKind) Weight() float64 {
	return feedbackWeights[k]
}

// FeedbackKinds returns the recognized kinds in a stable order.
func FeedbackKinds() []FeedbackKind {
	return []FeedbackKind{FeedbackLike, FeedbackDislike, FeedbackSave, FeedbackShare, FeedbackView}
}

// FeedbackEvent is one append-only entry in the feedback log.
type FeedbackEvent struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	ItemID     string         `json:"item_id"`
	Kind       FeedbackKind   `json:"feedback_type"`
	Importance float64        `json:"importance"`
	Timestamp  time.Time      `json:"timestamp"`
	Extra      map[string]any `json:"additional_data,omitempty"`
}

// UserFeedbackSummary aggregates a user's feedback history. Recomputed on
// demand from the event log.
type UserFeedbackSummary struct {
	UserID     string               `json:"user_id"`
	Total      int                  `json:"total_feedback"`
	Breakdown  map[FeedbackKind]int `json:"feedback_breakdown"`
	Engagement float64              `json:"engagement_score"`
	LastEvent  *time.Time           `json:"last_feedback,omitempty"`
}

// ItemFeedbackSummary aggregates the feedback recorded for one item.
type ItemFeedbackSummary struct {
	ItemID     string               `json:"item_id"`
	Total      int                  `json:"total_feedback"`
	Breakdown  map[FeedbackKind]int `json:"feedback_breakdown"`
	Popularity float64              `json:"popularity_score"` // 0-100
}

// TrendingItem is a catalog item with its cumulative feedback importance.
type TrendingItem struct {
	Item
	TrendingScore float64 `json:"trending_score"`
}

// ScoreRange holds the min and max overall score in a recommendation set.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RecommendationSummary describes a set of ranked recommendations.
type RecommendationSummary struct {
	Count         int        `json:"count"`
	AverageScore  float64    `json:"average_score"`
	TopCategories []Category `json:"top_categories"`
	ScoreRange    ScoreRange `json:"score_range"`
}

// ImprovementReport suggests how a user can improve their recommendations.
type ImprovementReport struct {
	UserID            string   `json:"user_id"`
	NeedsMoreFeedback bool     `json:"needs_more_feedback"`
	Suggestions       []string `json:"suggestions"`
	Quality           string   `json:"feedback_quality,omitempty"` // "good" or "improving"
}

// FeedbackPatterns summarizes feedback activity across all users.
type FeedbackPatterns struct {
	TotalEvents       int                  `json:"total_feedback"`
	Distribution      map[FeedbackKind]int `json:"feedback_distribution"`
	MostPopularKind   FeedbackKind         `json:"most_popular_feedback"`
	AverageImportance float64              `json:"average_importance"`
}

// Preferences is the per-user preference projection maintained from feedback
// events. Liked and Disliked are mutually exclusive.
type Preferences struct {
	UserID   string   `json:"user_id"`
	Liked    []string `json:"liked_items"`
	Disliked []string `json:"disliked_items"`
	Saved    []string `json:"saved_items"`
}
