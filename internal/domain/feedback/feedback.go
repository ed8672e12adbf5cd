// Package feedback folds the append-only feedback event log into per-user
// and per-item summaries, trending rankings and improvement suggestions, and
// maintains the per-user preference projection.
package feedback

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/pkg/logger"
	"github.com/okian/fitfindr/pkg/metrics"
)

// Document keys in the store.
const (
	logKey      = "feedback"
	usersKey    = "users"
	activityKey = "activity_log"
)

// Store persists the event log, the preference projection and activity
// records. The docstore adapter satisfies it.
type Store interface {
	// Load decodes the document at key into out. A missing document leaves
	// out untouched, so callers pre-populate out with their default.
	Load(ctx context.Context, key string, out any) error

	// Save writes value as the document at key, replacing any previous one.
	Save(ctx context.Context, key string, value any) error

	// Append adds value to the JSON array document at key, creating the
	// document when absent.
	Append(ctx context.Context, key string, value any) error
}

// activityRecord mirrors the shared activity-log entry shape.
type activityRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Activity  string         `json:"activity"`
	Data      map[string]any `json:"data,omitempty"`
}

// Aggregation thresholds.
const (
	minEventsForAnalysis = 3  // below this, ask for more feedback
	goodQualityEvents    = 10 // at or above this, feedback_quality is "good"
	popularityScale      = 20 // mean importance to 0-100 popularity
	maxPopularity        = 100
)

// Catalog resolves item ids to catalog items. The catalog is authoritative
// for existence: trending silently drops ids it cannot resolve.
type Catalog interface {
	Get(ctx context.Context, id string) (model.Item, bool)
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithCatalog wires the catalog used to hydrate trending items.
func WithCatalog(c Catalog) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.catalog = c
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock sets the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// Aggregator owns the feedback event log and the preference projection.
// Reads scan the in-memory log, which mirrors the persisted document; a
// summary computed concurrently with an in-flight append may omit that
// append, which is the documented visibility model.
type Aggregator struct {
	mu      sync.RWMutex
	store   Store
	catalog Catalog
	logger  logger.Logger
	now     func() time.Time

	events []model.FeedbackEvent
	prefs  map[string]*model.Preferences
}

// New creates an Aggregator over the given document store. Call Load to
// hydrate previously persisted state.
func New(store Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store: store,
		now:   time.Now,
		prefs: make(map[string]*model.Preferences),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Named("feedback")
	}
	return a
}

// Load hydrates the event log and preference projection from the store.
func (a *Aggregator) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var events []model.FeedbackEvent
	if err := a.store.Load(ctx, logKey, &events); err != nil {
		return fmt.Errorf("load feedback log: %w", err)
	}
	a.events = events

	var prefs []model.Preferences
	if err := a.store.Load(ctx, usersKey, &prefs); err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	a.prefs = make(map[string]*model.Preferences, len(prefs))
	for i := range prefs {
		p := prefs[i]
		a.prefs[p.UserID] = &p
	}
	return nil
}

// Record validates and appends a feedback event, then updates the per-user
// preference projection. The log append is the durability point: a
// projection failure after a successful append is logged, not rolled back,
// and the projection can be rebuilt by replay.
func (a *Aggregator) Record(ctx context.Context, userID, itemID string, kind model.FeedbackKind, extra map[string]any) (model.FeedbackEvent, error) {
	if userID == "" || itemID == "" {
		return model.FeedbackEvent{}, ErrMissingID
	}
	if !kind.Valid() {
		metrics.RecordFeedbackError()
		return model.FeedbackEvent{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	event := model.FeedbackEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		ItemID:     itemID,
		Kind:       kind,
		Importance: kind.Weight(),
		Timestamp:  a.now(),
		Extra:      extra,
	}

	if err := a.store.Append(ctx, logKey, event); err != nil {
		metrics.RecordFeedbackError()
		return model.FeedbackEvent{}, fmt.Errorf("append feedback event: %w", err)
	}

	a.mu.Lock()
	a.events = append(a.events, event)
	a.applyLocked(event)
	persistErr := a.persistPrefsLocked(ctx)
	a.mu.Unlock()

	if persistErr != nil {
		// Event is durable; the projection catches up on the next rebuild.
		a.logger.Warn(ctx, "preference projection persist failed",
			logger.String("userID", userID),
			logger.Error(persistErr),
		)
	}

	metrics.RecordFeedbackEvent(string(kind))
	if err := a.store.Append(ctx, activityKey, activityRecord{
		Timestamp: a.now(),
		Activity:  "feedback_recorded",
		Data: map[string]any{
			"user_id":       userID,
			"item_id":       itemID,
			"feedback_type": string(kind),
		},
	}); err != nil {
		a.logger.Debug(ctx, "activity log append failed", logger.Error(err))
	}
	return event, nil
}

// applyLocked folds one event into the preference projection. Liked and
// disliked stay mutually exclusive.
func (a *Aggregator) applyLocked(event model.FeedbackEvent) {
	p, ok := a.prefs[event.UserID]
	if !ok {
		p = &model.Preferences{UserID: event.UserID}
		a.prefs[event.UserID] = p
	}
	switch event.Kind {
	case model.FeedbackLike:
		p.Liked = addToSet(p.Liked, event.ItemID)
		p.Disliked = removeFromSet(p.Disliked, event.ItemID)
	case model.FeedbackDislike:
		p.Disliked = addToSet(p.Disliked, event.ItemID)
		p.Liked = removeFromSet(p.Liked, event.ItemID)
	case model.FeedbackSave:
		p.Saved = addToSet(p.Saved, event.ItemID)
	case model.FeedbackShare, model.FeedbackView:
		// No projection impact.
	}
}

func (a *Aggregator) persistPrefsLocked(ctx context.Context) error {
	prefs := make([]model.Preferences, 0, len(a.prefs))
	for _, p := range a.prefs {
		prefs = append(prefs, *p)
	}
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].UserID < prefs[j].UserID })
	return a.store.Save(ctx, usersKey, prefs)
}

// RebuildProjection replays the whole event log into a fresh preference
// projection and persists it.
func (a *Aggregator) RebuildProjection(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.prefs = make(map[string]*model.Preferences)
	for _, event := range a.events {
		a.applyLocked(event)
	}
	return a.persistPrefsLocked(ctx)
}

// Preferences returns the projection for a user. The second result is false
// when the user has no recorded feedback.
func (a *Aggregator) Preferences(_ context.Context, userID string) (model.Preferences, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.prefs[userID]
	if !ok {
		return model.Preferences{}, false
	}
	return *p, true
}

// UserSummary folds the log into a per-user summary. A user with no events
// gets a well-defined zero-value summary.
func (a *Aggregator) UserSummary(_ context.Context, userID string) model.UserFeedbackSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	summary := model.UserFeedbackSummary{
		UserID:    userID,
		Breakdown: make(map[model.FeedbackKind]int),
	}
	var engagement float64
	for _, event := range a.events {
		if event.UserID != userID {
			continue
		}
		summary.Total++
		summary.Breakdown[event.Kind]++
		engagement += event.Importance
		ts := event.Timestamp
		summary.LastEvent = &ts
	}
	summary.Engagement = round2(engagement)
	return summary
}

// ItemSummary folds the log into a per-item summary with a popularity score
// in [0,100] derived from mean importance.
func (a *Aggregator) ItemSummary(_ context.Context, itemID string) model.ItemFeedbackSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	summary := model.ItemFeedbackSummary{
		ItemID:    itemID,
		Breakdown: make(map[model.FeedbackKind]int),
	}
	var totalImportance float64
	for _, event := range a.events {
		if event.ItemID != itemID {
			continue
		}
		summary.Total++
		summary.Breakdown[event.Kind]++
		totalImportance += event.Importance
	}
	if summary.Total > 0 {
		popularity := totalImportance / float64(summary.Total) * popularityScale
		summary.Popularity = round1(math.Max(0, math.Min(maxPopularity, popularity)))
	}
	return summary
}

// FeedbackScore adapts per-item popularity into a scoring feedback
// component. This implements the scorer's optional FeedbackSource extension
// point; it is not wired by default.
func (a *Aggregator) FeedbackScore(ctx context.Context, _ string, itemID string) (float64, bool) {
	summary := a.ItemSummary(ctx, itemID)
	if summary.Total == 0 {
		return 0, false
	}
	return summary.Popularity, true
}

// Trending aggregates cumulative importance per item over the whole log and
// returns the top items hydrated from the catalog, highest first. Items
// without a catalog record are dropped. Ties break by item id, so repeated
// calls over an unchanged log return the same ordering.
func (a *Aggregator) Trending(ctx context.Context, limit int) []model.TrendingItem {
	if limit <= 0 {
		limit = 10
	}

	a.mu.RLock()
	totals := make(map[string]float64)
	for _, event := range a.events {
		if event.ItemID == "" {
			continue
		}
		totals[event.ItemID] += event.Importance
	}
	a.mu.RUnlock()

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if totals[ids[i]] != totals[ids[j]] {
			return totals[ids[i]] > totals[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}

	trending := make([]model.TrendingItem, 0, len(ids))
	for _, id := range ids {
		if a.catalog == nil {
			break
		}
		item, ok := a.catalog.Get(ctx, id)
		if !ok {
			continue
		}
		trending = append(trending, model.TrendingItem{
			Item:          item,
			TrendingScore: round2(totals[id]),
		})
	}
	return trending
}

// Improvements analyzes a user's feedback history and suggests how to get
// better recommendations.
func (a *Aggregator) Improvements(ctx context.Context, userID string) model.ImprovementReport {
	summary := a.UserSummary(ctx, userID)

	if summary.Total < minEventsForAnalysis {
		return model.ImprovementReport{
			UserID:            userID,
			NeedsMoreFeedback: true,
			Suggestions: []string{
				"Like or dislike more items to improve recommendations",
				"Save items you're interested in",
				"Try different styles to expand your preferences",
			},
		}
	}

	likes := summary.Breakdown[model.FeedbackLike]
	dislikes := summary.Breakdown[model.FeedbackDislike]

	suggestions := []string{}
	if dislikes > likes*2 {
		suggestions = append(suggestions,
			"Consider exploring different style categories",
			"Try items with different silhouettes",
		)
	}
	if likes > 0 && dislikes == 0 {
		suggestions = append(suggestions,
			"Great! Your preferences are clear",
			"Try saving items you love for future reference",
		)
	}

	quality := "improving"
	if summary.Total >= goodQualityEvents {
		quality = "good"
	}
	return model.ImprovementReport{
		UserID:            userID,
		NeedsMoreFeedback: false,
		Suggestions:       suggestions,
		Quality:           quality,
	}
}

// Patterns summarizes feedback activity across all users.
func (a *Aggregator) Patterns(_ context.Context) model.FeedbackPatterns {
	a.mu.RLock()
	defer a.mu.RUnlock()

	patterns := model.FeedbackPatterns{
		Distribution:    make(map[model.FeedbackKind]int),
		MostPopularKind: "none",
	}
	var totalImportance float64
	for _, event := range a.events {
		patterns.TotalEvents++
		patterns.Distribution[event.Kind]++
		totalImportance += event.Importance
	}
	if patterns.TotalEvents == 0 {
		return patterns
	}

	// Stable winner selection over the fixed kind order.
	best := -1
	for _, kind := range model.FeedbackKinds() {
		if count := patterns.Distribution[kind]; count > best {
			best = count
			patterns.MostPopularKind = kind
		}
	}
	patterns.AverageImportance = round2(totalImportance / float64(patterns.TotalEvents))
	return patterns
}

// Count returns the number of events in the log.
func (a *Aggregator) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.events)
}

func addToSet(set []string, id string) []string {
	for _, existing := range set {
		if existing == id {
			return set
		}
	}
	return append(set, id)
}

func removeFromSet(set []string, id string) []string {
	for i, existing := range set {
		if existing == id {
			return append(set[:i], set[i+1:]...)
		}
	}
	return set
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
