package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/fitfindr/internal/app"
	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

// sourceItems builds a small deterministic catalog page for a keyword.
func sourceItems(keyword string, max int) []model.Item {
	items := make([]model.Item, 0, max)
	for i := 0; i < max; i++ {
		items = append(items, model.Item{
			ID:       fmt.Sprintf("%s_%d", keyword, i+1),
			Title:    keyword + " piece",
			Style:    keyword,
			Category: model.CategoryTop,
			Likes:    100,
			Saves:    50,
		})
	}
	return items
}

// flakySource fails the first search per keyword, then recovers.
type flakySource struct {
	mu     sync.Mutex
	failed map[string]bool
}

func (s *flakySource) Search(_ context.Context, keyword string, max int) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.failed[keyword] {
		s.failed[keyword] = true
		return nil, errors.New("source unavailable")
	}
	return sourceItems(keyword, max), nil
}

// countingSource records how often each keyword was fetched.
type countingSource struct {
	mu     sync.Mutex
	counts map[string]int
}

func (s *countingSource) Search(_ context.Context, keyword string, max int) ([]model.Item, error) {
	s.mu.Lock()
	s.counts[keyword]++
	s.mu.Unlock()
	return sourceItems(keyword, max), nil
}

func (s *countingSource) count(keyword string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[keyword]
}

// startedService spins up a full service for end-to-end exercises.
func startedService(t *testing.T, opts ...service.Option) (*service.Service, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	svc := newTestService(t, opts...)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("failed to start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc, ctx
}

func TestService_RecommendationFlow(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := startedService(t)

		Convey("When resolving a profile and requesting recommendations", func() {
			prof := svc.ResolveProfile(ctx, profile.Request{
				UserID: "user_1",
				Style:  "retro denim",
			})
			recs, err := svc.Recommend(ctx, prof, 0)

			Convey("Then the profile should carry the request inputs", func() {
				So(prof.ID, ShouldEqual, "user_1")
				So(prof.PreferredStyle, ShouldEqual, "retro denim")
			})

			Convey("Then the first request should fetch the catalog inline", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldBeGreaterThan, 0)
				So(len(recs), ShouldBeLessThanOrEqualTo, 10)
			})

			Convey("And recommendations should be ordered by overall score", func() {
				So(err, ShouldBeNil)
				for i := 1; i < len(recs); i++ {
					So(recs[i-1].Overall, ShouldBeGreaterThanOrEqualTo, recs[i].Overall)
				}
			})

			Convey("And every score should be within bounds", func() {
				So(err, ShouldBeNil)
				for _, rec := range recs {
					So(rec.Overall, ShouldBeBetweenOrEqual, 0, 100)
					So(rec.Fit, ShouldBeBetweenOrEqual, 0, 100)
					So(rec.Explanation, ShouldNotBeEmpty)
				}
			})
		})

		Convey("When requesting with an explicit limit", func() {
			prof := svc.ResolveProfile(ctx, profile.Request{UserID: "user_2", Style: "retro denim"})
			recs, err := svc.Recommend(ctx, prof, 3)

			So(err, ShouldBeNil)
			So(len(recs), ShouldBeLessThanOrEqualTo, 3)
		})

		Convey("When assembling outfits from recommendations", func() {
			prof := svc.ResolveProfile(ctx, profile.Request{UserID: "user_3", Style: "retro denim"})
			recs, err := svc.Recommend(ctx, prof, 20)
			So(err, ShouldBeNil)

			outfits := svc.AssembleOutfits(ctx, recs)

			Convey("Then there should be at most five outfits", func() {
				So(len(outfits), ShouldBeGreaterThan, 0)
				So(len(outfits), ShouldBeLessThanOrEqualTo, 5)
			})

			Convey("And each outfit should have at most one item per category", func() {
				for _, o := range outfits {
					seen := make(map[model.Category]bool)
					for _, item := range o.Items {
						So(seen[item.Category], ShouldBeFalse)
						seen[item.Category] = true
					}
					So(o.TotalScore, ShouldBeBetweenOrEqual, 0, 100)
					So(o.StyleCohesion, ShouldBeBetweenOrEqual, 20, 100)
				}
			})
		})

		Convey("When summarizing recommendations", func() {
			prof := svc.ResolveProfile(ctx, profile.Request{UserID: "user_4", Style: "retro denim"})
			recs, err := svc.Recommend(ctx, prof, 10)
			So(err, ShouldBeNil)

			summary := svc.Summarize(ctx, recs)
			So(summary.Count, ShouldEqual, len(recs))
			So(summary.AverageScore, ShouldBeBetweenOrEqual, summary.ScoreRange.Min, summary.ScoreRange.Max)
			So(len(summary.TopCategories), ShouldBeLessThanOrEqualTo, 3)
		})
	})
}

func TestService_FeedbackFlow(t *testing.T) {
	Convey("Given a started service with a populated catalog", t, func() {
		svc, ctx := startedService(t)

		prof := svc.ResolveProfile(ctx, profile.Request{UserID: "user_1", Style: "retro denim"})
		recs, err := svc.Recommend(ctx, prof, 5)
		So(err, ShouldBeNil)
		So(len(recs), ShouldBeGreaterThan, 1)
		itemID := recs[0].ID

		Convey("When recording a like", func() {
			event, err := svc.RecordFeedback(ctx, "user_1", itemID, model.FeedbackLike, nil)

			Convey("Then the event should be stamped and weighted", func() {
				So(err, ShouldBeNil)
				So(event.ID, ShouldNotBeEmpty)
				So(event.Importance, ShouldEqual, 1.0)
			})

			Convey("And the preference projection should include the item", func() {
				prefs, ok := svc.Preferences(ctx, "user_1")
				So(ok, ShouldBeTrue)
				So(prefs.Liked, ShouldContain, itemID)
			})

			Convey("And a later dislike should move the item across sets", func() {
				_, err := svc.RecordFeedback(ctx, "user_1", itemID, model.FeedbackDislike, nil)
				So(err, ShouldBeNil)

				prefs, ok := svc.Preferences(ctx, "user_1")
				So(ok, ShouldBeTrue)
				So(prefs.Disliked, ShouldContain, itemID)
				So(prefs.Liked, ShouldNotContain, itemID)
			})
		})

		Convey("When recording an invalid kind", func() {
			_, err := svc.RecordFeedback(ctx, "user_1", itemID, model.FeedbackKind("meh"), nil)
			So(err, ShouldNotBeNil)
		})

		Convey("When checking event idempotency", func() {
			So(svc.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "evt-1"), ShouldBeTrue)

			svc.Unrecord(ctx, "evt-1")
			So(svc.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)
		})

		Convey("When querying summaries after several events", func() {
			_, _ = svc.RecordFeedback(ctx, "user_2", itemID, model.FeedbackLike, nil)
			_, _ = svc.RecordFeedback(ctx, "user_2", recs[1].ID, model.FeedbackSave, nil)

			Convey("Then the user summary should add up", func() {
				summary := svc.UserFeedbackSummary(ctx, "user_2")
				So(summary.UserID, ShouldEqual, "user_2")
				So(summary.Total, ShouldEqual, 2)
				So(summary.Engagement, ShouldAlmostEqual, 1.9) // like 1.0 + save 0.9
			})

			Convey("And the item summary should report popularity", func() {
				summary := svc.ItemFeedbackSummary(ctx, itemID)
				So(summary.ItemID, ShouldEqual, itemID)
				So(summary.Total, ShouldBeGreaterThan, 0)
				So(summary.Popularity, ShouldBeBetweenOrEqual, 0, 100)
			})

			Convey("And trending should surface the engaged items", func() {
				trending := svc.TrendingItems(ctx, 0)
				So(len(trending), ShouldBeGreaterThan, 0)
				ids := make([]string, 0, len(trending))
				for _, item := range trending {
					ids = append(ids, item.ID)
				}
				So(ids, ShouldContain, itemID)
			})

			Convey("And patterns should cover the whole log", func() {
				patterns := svc.FeedbackPatterns(ctx)
				So(patterns.TotalEvents, ShouldBeGreaterThanOrEqualTo, 2)
				So(patterns.MostPopularKind, ShouldNotEqual, model.FeedbackKind("none"))
			})
		})

		Convey("When asking for improvements with sparse feedback", func() {
			_, _ = svc.RecordFeedback(ctx, "user_3", itemID, model.FeedbackLike, nil)

			report := svc.Improvements(ctx, "user_3")
			So(report.NeedsMoreFeedback, ShouldBeTrue)
			So(len(report.Suggestions), ShouldEqual, 3)
		})

		Convey("When asking for improvements with enough feedback", func() {
			for i := 0; i < 3; i++ {
				_, err := svc.RecordFeedback(ctx, "user_4", recs[i%2].ID, model.FeedbackLike, nil)
				So(err, ShouldBeNil)
			}

			report := svc.Improvements(ctx, "user_4")
			So(report.NeedsMoreFeedback, ShouldBeFalse)
			So(report.Quality, ShouldEqual, "improving")
			So(report.Suggestions, ShouldContain, "Great! Your preferences are clear")
		})
	})
}

func TestService_StyleSuggestions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, ctx := startedService(t)

		Convey("When suggesting styles for a partial query", func() {
			suggestions := svc.SuggestStyles(ctx, "min")

			So(len(suggestions), ShouldBeGreaterThan, 0)
			So(len(suggestions), ShouldBeLessThanOrEqualTo, 5)
			So(suggestions, ShouldContain, "minimalist chic")
		})
	})
}

func TestService_FetchRetryAfterSourceFailure(t *testing.T) {
	Convey("Given a source that fails its first call per keyword", t, func() {
		src := &flakySource{failed: make(map[string]bool)}
		svc, ctx := startedService(t, service.WithCatalogSource(src))

		prof := svc.ResolveProfile(ctx, profile.Request{UserID: "user_1", Style: "vintage"})

		Convey("When the warmup fetch for the style fails", func() {
			// The failed background job must release the keyword so a later
			// request retries the fetch instead of ranking an empty catalog.
			var recs []model.ScoredItem
			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				var err error
				recs, err = svc.Recommend(ctx, prof, 5)
				So(err, ShouldBeNil)
				if len(recs) > 0 {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}

			Convey("Then recommendations should recover once the source does", func() {
				So(len(recs), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestService_BackgroundRefresh(t *testing.T) {
	Convey("Given a service with a single-entry fetch deduper", t, func() {
		src := &countingSource{counts: make(map[string]int)}
		svc, ctx := startedService(t,
			service.WithCatalogSource(src),
			service.WithDedupeSize(1),
		)

		denim := svc.ResolveProfile(ctx, profile.Request{UserID: "user_1", Style: "retro denim"})
		boho := svc.ResolveProfile(ctx, profile.Request{UserID: "user_1", Style: "boho chic"})

		recs, err := svc.Recommend(ctx, denim, 5)
		So(err, ShouldBeNil)
		So(len(recs), ShouldBeGreaterThan, 0)
		So(src.count("retro denim"), ShouldEqual, 1)

		_, err = svc.Recommend(ctx, boho, 5)
		So(err, ShouldBeNil)

		Convey("When the keyword is requested again after its dedupe entry aged out", func() {
			recs, err := svc.Recommend(ctx, denim, 5)
			So(err, ShouldBeNil)
			So(len(recs), ShouldBeGreaterThan, 0)

			Convey("Then the store serves the request and the queue refreshes the keyword", func() {
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) && src.count("retro denim") < 2 {
					time.Sleep(10 * time.Millisecond)
				}
				So(src.count("retro denim"), ShouldBeGreaterThanOrEqualTo, 2)
			})
		})
	})
}

func TestService_PersistenceAcrossRestart(t *testing.T) {
	Convey("Given a service that recorded feedback", t, func() {
		dir := t.TempDir()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		first := service.New(service.WithDataDir(dir))
		So(first.Start(ctx), ShouldBeNil)

		prof := first.ResolveProfile(ctx, profile.Request{UserID: "user_1", Style: "retro denim"})
		recs, err := first.Recommend(ctx, prof, 5)
		So(err, ShouldBeNil)
		So(len(recs), ShouldBeGreaterThan, 0)

		_, err = first.RecordFeedback(ctx, "user_1", recs[0].ID, model.FeedbackLike, nil)
		So(err, ShouldBeNil)
		first.Stop()

		Convey("When a new service starts over the same data directory", func() {
			second := service.New(service.WithDataDir(dir))
			So(second.Start(ctx), ShouldBeNil)
			defer second.Stop()

			Convey("Then the feedback log should survive the restart", func() {
				summary := second.UserFeedbackSummary(ctx, "user_1")
				So(summary.Total, ShouldEqual, 1)

				prefs, ok := second.Preferences(ctx, "user_1")
				So(ok, ShouldBeTrue)
				So(prefs.Liked, ShouldContain, recs[0].ID)
			})
		})
	})
}
