// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/fitfindr/internal/adapters/catalog"
	"github.com/okian/fitfindr/internal/adapters/docstore"
	fetchqueue "github.com/okian/fitfindr/internal/adapters/mq/queue"
	workerpool "github.com/okian/fitfindr/internal/adapters/mq/worker"
	"github.com/okian/fitfindr/internal/adapters/repository"
	"github.com/okian/fitfindr/internal/domain/dedupe"
	"github.com/okian/fitfindr/internal/domain/feedback"
	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/internal/domain/outfit"
	"github.com/okian/fitfindr/internal/domain/profile"
	"github.com/okian/fitfindr/internal/domain/rank"
	"github.com/okian/fitfindr/internal/domain/scoring"
	"github.com/okian/fitfindr/pkg/logger"
	"github.com/okian/fitfindr/pkg/metrics"
)

// Default configuration values.
const (
	defaultQueueSize    = 1024
	defaultDedupeSize   = 50_000
	defaultMaxOutfits   = 5
	defaultOutfitSeed   = 42
	defaultLimit        = 10
	defaultMaxLimit     = 50
	defaultTrendLimit   = 10
	defaultDataDir      = "data"
	fetchKeywordPrefix  = "fetch:"
	feedbackEventPrefix = "feedback:"

	recommendationsKey = "recommendations"
)

// warmupStyles are prefetched asynchronously at startup so the first
// recommendation request rarely has to fetch synchronously.
var warmupStyles = []string{"casual", "formal", "streetwear", "vintage", "bohemian", "minimalist"} //nolint:gochecknoglobals // immutable warmup list

// Service implements the API dependencies for the recommendation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalogStore repository.Store
	source       catalog.Source
	fetchQueue   fetchqueue.Queue
	workerPool   *workerpool.Pool
	deduper      dedupe.Deduper
	scorer       scoring.Scorer
	ranker       *rank.Ranker
	assembler    *outfit.Assembler
	aggregator   *feedback.Aggregator
	resolver     *profile.Resolver
	documents    docstore.Store
	analyzer     profile.Analyzer

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	fetchSize     int
	maxOutfits    int
	outfitSeed    int64
	defaultLimit  int
	maxLimit      int
	trendingLimit int
	dataDir       string
	weights       scoring.Weights

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of catalog fetch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the fetch queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalogSource overrides the catalog source. Tests inject fakes here.
func WithCatalogSource(src catalog.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithCatalogFetchSize sets how many items each fetch requests per keyword.
func WithCatalogFetchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.fetchSize = size
		}
	}
}

// WithMaxOutfits caps the number of outfits assembled per request.
func WithMaxOutfits(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxOutfits = limit
		}
	}
}

// WithOutfitSeed seeds outfit pool sampling for reproducible assembly.
func WithOutfitSeed(seed int64) Option {
	return func(s *Service) {
		s.outfitSeed = seed
	}
}

// WithRecommendationLimits sets the default and maximum per-request limits.
func WithRecommendationLimits(def, max int) Option {
	return func(s *Service) {
		if def > 0 {
			s.defaultLimit = def
		}
		if max > 0 {
			s.maxLimit = max
		}
	}
}

// WithTrendingLimit sets the default trending list size.
func WithTrendingLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.trendingLimit = limit
		}
	}
}

// WithDataDir sets the directory used by the document store.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithDocstore overrides the document store. Tests inject fakes here.
func WithDocstore(store docstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.documents = store
		}
	}
}

// WithScoreWeights sets the component score weights.
func WithScoreWeights(w scoring.Weights) Option {
	return func(s *Service) {
		if w.Valid() {
			s.weights = w
		}
	}
}

// WithAnalyzer sets the optional body shape analyzer for profile resolution.
func WithAnalyzer(a profile.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		fetchSize:     catalog.DefaultFetchSize,
		maxOutfits:    defaultMaxOutfits,
		outfitSeed:    defaultOutfitSeed,
		defaultLimit:  defaultLimit,
		maxLimit:      defaultMaxLimit,
		trendingLimit: defaultTrendLimit,
		dataDir:       defaultDataDir,
		weights:       scoring.DefaultWeights(),
		stopCh:        make(chan struct{}),
		logger:        nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommendation service...")

	// Initialize components
	s.catalogStore = repository.NewMemStore()
	if s.source == nil {
		s.source = catalog.NewSampleSource()
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.fetchQueue = fetchqueue.NewInMemoryQueue(
		fetchqueue.WithCapacity(s.queueSize),
		fetchqueue.WithBufferSize(s.queueSize),
	)
	if s.documents == nil {
		s.documents = docstore.NewFileStore(docstore.WithDir(s.dataDir))
	}
	s.scorer = scoring.NewRuleScorer(
		scoring.WithWeights(s.weights),
	)
	s.ranker = rank.New(s.scorer)
	s.assembler = outfit.New(
		outfit.WithRand(rand.New(rand.NewSource(s.outfitSeed))), //nolint:gosec // deterministic seed for reproducible assembly
		outfit.WithMaxOutfits(s.maxOutfits),
	)
	s.aggregator = feedback.New(s.documents,
		feedback.WithCatalog(s.catalogStore),
		feedback.WithLogger(s.logger.Named("feedback")),
	)
	if err := s.aggregator.Load(ctx); err != nil {
		return fmt.Errorf("load feedback state: %w", err)
	}
	s.resolver = profile.NewResolver(
		profile.WithAnalyzer(s.analyzer),
		profile.WithLogger(s.logger.Named("profile")),
	)

	// Create and start the fetch worker pool. A failed fetch releases the
	// keyword's dedupe reservation so a later request retries it instead of
	// ranking an empty catalog forever.
	s.workerPool = workerpool.NewPool(s.workerCount, s.fetchQueue, s.source, s.catalogStore,
		workerpool.WithFailureHook(func(ctx context.Context, keyword string) {
			s.deduper.Unrecord(ctx, fetchKeywordPrefix+keyword)
		}),
	)
	s.workerPool.Start(ctx)

	// Warm the catalog asynchronously so first requests rarely fetch inline.
	for _, style := range warmupStyles {
		s.enqueueFetch(ctx, style)
	}

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("feedbackEvents", s.aggregator.Count()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping recommendation service...")

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close queue
	if q, ok := s.fetchQueue.(*fetchqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "recommendation service stopped")
}

// ResolveProfile builds a style profile from the request inputs.
func (s *Service) ResolveProfile(ctx context.Context, req profile.Request) model.Profile {
	return s.resolver.Resolve(ctx, req)
}

// Recommend ensures the catalog covers the profile's style, then scores and
// ranks the catalog for the profile. A zero limit applies the configured
// default; limits above the configured maximum are clamped.
func (s *Service) Recommend(ctx context.Context, prof model.Profile, limit int) ([]model.ScoredItem, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	if err := s.ensureCatalog(ctx, prof.PreferredStyle); err != nil {
		// A fetch failure leaves whatever catalog we already have; an empty
		// catalog yields an empty recommendation list rather than an error.
		s.logger.Warn(ctx, "catalog fetch failed",
			logger.String("style", prof.PreferredStyle),
			logger.Error(err),
		)
	}

	items := s.catalogStore.List(ctx)
	ranked, err := s.ranker.Rank(ctx, prof, items, limit)
	if err != nil {
		return nil, err
	}

	s.persistRecommendations(ctx, prof, ranked)
	return ranked, nil
}

// recommendationSnapshot is the persisted record of one served request.
type recommendationSnapshot struct {
	UserID      string    `json:"user_id"`
	Style       string    `json:"style"`
	Count       int       `json:"count"`
	ItemIDs     []string  `json:"item_ids"`
	GeneratedAt time.Time `json:"generated_at"`
}

// persistRecommendations saves the served set and logs the query. Both are
// best effort: the response has already been computed and a storage failure
// must not fail the request.
func (s *Service) persistRecommendations(ctx context.Context, prof model.Profile, ranked []model.ScoredItem) {
	ids := make([]string, 0, len(ranked))
	for _, item := range ranked {
		ids = append(ids, item.ID)
	}
	snapshot := recommendationSnapshot{
		UserID:      prof.ID,
		Style:       prof.PreferredStyle,
		Count:       len(ranked),
		ItemIDs:     ids,
		GeneratedAt: time.Now(),
	}
	if err := s.documents.Append(ctx, recommendationsKey, snapshot); err != nil {
		s.logger.Warn(ctx, "recommendation snapshot persist failed", logger.Error(err))
	}
	if err := docstore.LogActivity(ctx, s.documents, "query_processed", map[string]any{
		"user_id": prof.ID,
		"style":   prof.PreferredStyle,
		"count":   len(ranked),
	}); err != nil {
		s.logger.Debug(ctx, "activity log append failed", logger.Error(err))
	}
}

// AssembleOutfits builds outfits from a ranked recommendation list.
func (s *Service) AssembleOutfits(_ context.Context, items []model.ScoredItem) []model.Outfit {
	return s.assembler.Assemble(items)
}

// Summarize computes aggregate statistics over a recommendation list.
func (s *Service) Summarize(_ context.Context, items []model.ScoredItem) model.RecommendationSummary {
	return rank.Summary(items)
}

// SeenAndRecord atomically checks if a feedback event id was seen and records
// it if not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, feedbackEventPrefix+id)
}

// Unrecord removes a feedback event ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, feedbackEventPrefix+id)
}

// RecordFeedback validates and records one feedback event.
func (s *Service) RecordFeedback(ctx context.Context, userID, itemID string, kind model.FeedbackKind, extra map[string]any) (model.FeedbackEvent, error) {
	return s.aggregator.Record(ctx, userID, itemID, kind, extra)
}

// UserFeedbackSummary returns aggregate feedback statistics for a user.
func (s *Service) UserFeedbackSummary(ctx context.Context, userID string) model.UserFeedbackSummary {
	return s.aggregator.UserSummary(ctx, userID)
}

// ItemFeedbackSummary returns aggregate feedback statistics for an item.
func (s *Service) ItemFeedbackSummary(ctx context.Context, itemID string) model.ItemFeedbackSummary {
	return s.aggregator.ItemSummary(ctx, itemID)
}

// TrendingItems returns the most engaged-with catalog items. A zero limit
// applies the configured default.
func (s *Service) TrendingItems(ctx context.Context, limit int) []model.TrendingItem {
	if limit <= 0 {
		limit = s.trendingLimit
	}
	return s.aggregator.Trending(ctx, limit)
}

// FeedbackPatterns returns corpus-wide feedback statistics.
func (s *Service) FeedbackPatterns(ctx context.Context) model.FeedbackPatterns {
	return s.aggregator.Patterns(ctx)
}

// Improvements reports how a user's feedback could sharpen recommendations.
func (s *Service) Improvements(ctx context.Context, userID string) model.ImprovementReport {
	return s.aggregator.Improvements(ctx, userID)
}

// Preferences returns the projected preference sets for a user.
func (s *Service) Preferences(ctx context.Context, userID string) (model.Preferences, bool) {
	return s.aggregator.Preferences(ctx, userID)
}

// SuggestStyles completes a partial style query against the known styles.
func (s *Service) SuggestStyles(_ context.Context, partial string) []string {
	return profile.Suggest(partial)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.fetchQueue.Len(ctx)
		catalogItems := s.catalogStore.Count(ctx)
		feedbackEvents := s.aggregator.Count()

		stats["queueLength"] = queueLen
		stats["catalogItems"] = catalogItems
		stats["feedbackEvents"] = feedbackEvents

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateCatalogSize(catalogItems)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// ensureCatalog makes sure the catalog has items for a style keyword. The
// first request for an unseen keyword fetches synchronously so the caller
// sees a populated catalog; later requests are served from the store.
func (s *Service) ensureCatalog(ctx context.Context, style string) error {
	keyword := strings.ToLower(strings.TrimSpace(style))
	if keyword == "" {
		return nil
	}
	if len(s.catalogStore.ListByKeyword(ctx, keyword)) > 0 {
		// Served from the store. Queue a background refresh if the keyword's
		// previous fetch has aged out of the deduper.
		s.enqueueFetch(ctx, keyword)
		return nil
	}
	if s.deduper.SeenAndRecord(ctx, fetchKeywordPrefix+keyword) {
		// A fetch for this keyword is already queued or in flight.
		return nil
	}

	found, err := s.source.Search(ctx, keyword, s.fetchSize)
	if err != nil {
		s.deduper.Unrecord(ctx, fetchKeywordPrefix+keyword)
		metrics.RecordCatalogFetchError()
		return fmt.Errorf("search %q: %w", keyword, err)
	}
	for _, item := range found {
		s.catalogStore.Upsert(ctx, keyword, item)
	}
	metrics.RecordCatalogFetch()
	s.logger.Debug(ctx, "fetched catalog inline",
		logger.String("keyword", keyword),
		logger.Int("items", len(found)),
	)
	return nil
}

// enqueueFetch queues an async fetch for a keyword unless one was already
// requested recently. The deduper and queue synchronize themselves, so this
// is safe with or without s.mu held.
func (s *Service) enqueueFetch(ctx context.Context, keyword string) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return
	}
	if s.deduper.SeenAndRecord(ctx, fetchKeywordPrefix+keyword) {
		return
	}
	ok := s.fetchQueue.Enqueue(ctx, fetchqueue.FetchJob{
		Keyword:     keyword,
		MaxItems:    s.fetchSize,
		RequestedAt: time.Now(),
	})
	if !ok {
		s.deduper.Unrecord(ctx, fetchKeywordPrefix+keyword)
		s.logger.Warn(ctx, "fetch queue rejected job",
			logger.String("keyword", keyword),
		)
	}
}
