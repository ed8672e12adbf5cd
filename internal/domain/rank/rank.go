// Package rank turns a profile and a catalog into an ordered, truncated list
// of scored recommendations.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/fitfindr/internal/domain/filter"
	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/internal/domain/scoring"
	"github.com/okian/fitfindr/pkg/metrics"
)

// DefaultLimit caps results when the caller does not supply a limit.
const DefaultLimit = 10

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithClock sets the time source used to stamp recommendations. Tests inject
// a fixed clock for deterministic output.
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) {
		if now != nil {
			r.now = now
		}
	}
}

// Ranker filters a catalog, scores the surviving items and returns the top-N
// by overall score. It keeps no state between calls.
type Ranker struct {
	scorer scoring.Scorer
	now    func() time.Time
}

// New creates a Ranker around the given scorer.
func New(scorer scoring.Scorer, opts ...Option) *Ranker {
	r := &Ranker{
		scorer: scorer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank applies the preference filter (falling back to the full catalog when
// it comes up empty), scores every surviving item and returns at most limit
// items ordered by overall score descending. The sort is stable: ties keep
// catalog order. An empty catalog yields an empty slice.
func (r *Ranker) Rank(ctx context.Context, profile model.Profile, items []model.Item, limit int) ([]model.ScoredItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(items) == 0 {
		return []model.ScoredItem{}, nil
	}

	working := filter.Apply(profile, items)
	recommendedAt := r.now()

	start := time.Now()
	scored := make([]model.ScoredItem, 0, len(working))
	for _, item := range working {
		scores, err := r.scorer.Score(ctx, profile, item)
		if err != nil {
			metrics.RecordScoringError()
			return nil, fmt.Errorf("score item %s: %w", item.ID, err)
		}
		scored = append(scored, model.ScoredItem{
			Item:          item,
			Scores:        scores,
			RecommendedAt: recommendedAt,
		})
	}
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	metrics.AddItemsScored(len(scored))

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Overall > scored[j].Overall
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	metrics.RecordRecommendationServed()
	return scored, nil
}

// Summary computes aggregate statistics over a recommendation set: count,
// average overall score, the three most frequent categories and the score
// range. An empty set yields a zero-value summary.
func Summary(items []model.ScoredItem) model.RecommendationSummary {
	if len(items) == 0 {
		return model.RecommendationSummary{TopCategories: []model.Category{}}
	}

	var total float64
	minScore, maxScore := items[0].Overall, items[0].Overall
	counts := make(map[model.Category]int)
	order := make([]model.Category, 0, len(counts))
	for _, item := range items {
		total += item.Overall
		if item.Overall < minScore {
			minScore = item.Overall
		}
		if item.Overall > maxScore {
			maxScore = item.Overall
		}
		if counts[item.Category] == 0 {
			order = append(order, item.Category)
		}
		counts[item.Category]++
	}

	// Most frequent first; ties keep first-seen order.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	const topCategoryCount = 3
	if len(order) > topCategoryCount {
		order = order[:topCategoryCount]
	}

	return model.RecommendationSummary{
		Count:         len(items),
		AverageScore:  round1(total / float64(len(items))),
		TopCategories: order,
		ScoreRange:    model.ScoreRange{Min: minScore, Max: maxScore},
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
