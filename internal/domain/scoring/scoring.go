// Package scoring computes multi-factor compatibility scores for
// (profile, item) pairs.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/internal/domain/tables"
)

// Score bands and bonuses used by the rule scorer.
const (
	maxScoreValue    = 100
	neutralScore     = 75 // used when a component has no signal
	keywordFitBonus  = 5  // per shape-keyword match in title/description
	directStyleScore = 90 // profile style and item style contain each other
	styleMatchBase   = 70 // base for keyword-hit styles, +5 per hit
	styleHitBonus    = 5
	styleFloorScore  = 60 // no style signal at all
)

// Trend banding thresholds over engagement = likes*0.7 + saves*1.3. The
// coarse steps avoid over-weighting viral outliers.
const (
	trendHotEngagement  = 1000
	trendWarmEngagement = 500
	trendMildEngagement = 100
	likesWeight         = 0.7
	savesWeight         = 1.3
)

// Weights combines the four component scores into the overall score. The
// fields must sum to 1.
type Weights struct {
	Fit      float64
	Style    float64
	Trend    float64
	Feedback float64
}

// DefaultWeights returns the standard component weights.
func DefaultWeights() Weights {
	return Weights{Fit: 0.4, Style: 0.3, Trend: 0.2, Feedback: 0.1}
}

// Valid reports whether the weights are non-negative and sum to 1.
func (w Weights) Valid() bool {
	const tolerance = 1e-9
	if w.Fit < 0 || w.Style < 0 || w.Trend < 0 || w.Feedback < 0 {
		return false
	}
	return math.Abs(w.Fit+w.Style+w.Trend+w.Feedback-1) < tolerance
}

// FeedbackSource supplies a per-(user, item) feedback score in [0,100].
// It is the integration point for the feedback aggregator's engagement data;
// the baseline scorer runs without one and uses the neutral score.
type FeedbackSource interface {
	FeedbackScore(ctx context.Context, userID, itemID string) (float64, bool)
}

// Scorer computes scores for one (profile, item) pair.
type Scorer interface {
	// Score computes component and overall scores, honoring ctx for
	// cancellation. It never fails on missing optional fields; absent
	// fields score as neutral defaults.
	Score(ctx context.Context, profile model.Profile, item model.Item) (model.Scores, error)
}

// Option applies a configuration option to the RuleScorer.
type Option func(*RuleScorer)

// WithWeights overrides the component weights. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *RuleScorer) {
		if w.Valid() {
			s.weights = w
		}
	}
}

// WithFeedbackSource wires a feedback source into the feedback component.
func WithFeedbackSource(src FeedbackSource) Option {
	return func(s *RuleScorer) {
		if src != nil {
			s.feedback = src
		}
	}
}

// RuleScorer implements Scorer with deterministic heuristic rules over the
// static compatibility tables.
type RuleScorer struct {
	weights  Weights
	feedback FeedbackSource
}

// NewRuleScorer creates a scorer with default weights and no feedback source.
func NewRuleScorer(opts ...Option) *RuleScorer {
	s := &RuleScorer{
		weights: DefaultWeights(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the scores for one (profile, item) pair.
func (s *RuleScorer) Score(ctx context.Context, profile model.Profile, item model.Item) (model.Scores, error) {
	if err := ctx.Err(); err != nil {
		return model.Scores{}, fmt.Errorf("scoring cancelled: %w", err)
	}

	fit := clamp(s.fitScore(profile, item))
	style := clamp(s.styleScore(profile, item))
	trend := clamp(s.trendScore(item))
	feedback := clamp(s.feedbackScore(ctx, profile, item))

	overall := fit*s.weights.Fit + style*s.weights.Style + trend*s.weights.Trend + feedback*s.weights.Feedback

	return model.Scores{
		Fit:         round1(fit),
		Style:       round1(style),
		Trend:       round1(trend),
		Feedback:    round1(feedback),
		Overall:     round1(overall),
		Explanation: explanation(overall),
		StylingTips: stylingTips(profile, item),
	}, nil
}

// fitScore looks up the base fit score for (body shape, category) and adds a
// bonus per shape keyword found in the item's title or description.
func (s *RuleScorer) fitScore(profile model.Profile, item model.Item) float64 {
	score := tables.FitBase(profile.BodyShape, item.Category)

	title := strings.ToLower(item.Title)
	description := strings.ToLower(item.Description)
	for _, keyword := range tables.ShapeKeywords(profile.BodyShape) {
		if strings.Contains(title, keyword) || strings.Contains(description, keyword) {
			score += keywordFitBonus
		}
	}
	return score
}

// styleScore matches the profile's preferred style against the item's style,
// title and description.
func (s *RuleScorer) styleScore(profile model.Profile, item model.Item) float64 {
	style := strings.ToLower(strings.TrimSpace(profile.PreferredStyle))
	if style == "" {
		return neutralScore
	}

	// Empty item style is contained by any preference and counts as a direct
	// match, mirroring the filter's style gate.
	itemStyle := strings.ToLower(item.Style)
	if strings.Contains(itemStyle, style) || strings.Contains(style, itemStyle) {
		return directStyleScore
	}

	title := strings.ToLower(item.Title)
	description := strings.ToLower(item.Description)
	hits := 0
	for _, keyword := range tables.StyleKeywords(style) {
		if strings.Contains(itemStyle, keyword) || strings.Contains(title, keyword) || strings.Contains(description, keyword) {
			hits++
		}
	}
	if hits > 0 {
		return styleMatchBase + float64(hits)*styleHitBonus
	}

	// No signal. Styles outside the keyword table always land here unless
	// they matched by substring above.
	return styleFloorScore
}

// trendScore bands the item's engagement into coarse steps.
func (s *RuleScorer) trendScore(item model.Item) float64 {
	engagement := float64(item.Likes)*likesWeight + float64(item.Saves)*savesWeight
	switch {
	case engagement >= trendHotEngagement:
		return 100
	case engagement >= trendWarmEngagement:
		return 80
	case engagement >= trendMildEngagement:
		return 60
	default:
		return 40
	}
}

// feedbackScore consults the feedback source when one is wired, otherwise
// returns the neutral score.
func (s *RuleScorer) feedbackScore(ctx context.Context, profile model.Profile, item model.Item) float64 {
	if s.feedback != nil {
		if score, ok := s.feedback.FeedbackScore(ctx, profile.ID, item.ID); ok {
			return score
		}
	}
	return neutralScore
}

// explanation bands the overall score into a four-tier text.
func explanation(overall float64) string {
	switch {
	case overall >= 85:
		return "Excellent match! This item perfectly complements your style and body type."
	case overall >= 75:
		return "Great choice! This item works well with your preferences and body shape."
	case overall >= 65:
		return "Good option! This item has potential with some styling adjustments."
	default:
		return "Consider alternatives. This item may not be the best fit for your style."
	}
}

// stylingTips concatenates category tips then shape tips, truncated to 3.
func stylingTips(profile model.Profile, item model.Item) []string {
	const maxTips = 3
	tips := make([]string, 0, maxTips)
	tips = append(tips, tables.CategoryTips(item.Category)...)
	tips = append(tips, tables.ShapeTips(profile.BodyShape)...)
	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	return tips
}

func clamp(x float64) float64 {
	return math.Max(0, math.Min(maxScoreValue, x))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
