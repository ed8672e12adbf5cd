package scoring_test

import (
	"context"
	"testing"

	"github.com/okian/fitfindr/internal/domain/model"
	"github.com/okian/fitfindr/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

type stubFeedback struct {
	score float64
	ok    bool
}

func (s stubFeedback) FeedbackScore(context.Context, string, string) (float64, bool) {
	return s.score, s.ok
}

func TestWeights(t *testing.T) {
	Convey("Given component weights", t, func() {
		Convey("The defaults should be valid and sum to 1", func() {
			w := scoring.DefaultWeights()
			So(w.Fit, ShouldEqual, 0.4)
			So(w.Style, ShouldEqual, 0.3)
			So(w.Trend, ShouldEqual, 0.2)
			So(w.Feedback, ShouldEqual, 0.1)
			So(w.Valid(), ShouldBeTrue)
		})

		Convey("Weights that do not sum to 1 should be invalid", func() {
			So(scoring.Weights{Fit: 0.5, Style: 0.3, Trend: 0.2, Feedback: 0.1}.Valid(), ShouldBeFalse)
		})

		Convey("Negative weights should be invalid even when they sum to 1", func() {
			So(scoring.Weights{Fit: 1.2, Style: -0.2, Trend: 0, Feedback: 0}.Valid(), ShouldBeFalse)
		})

		Convey("WithWeights should ignore invalid weights", func() {
			scorer := scoring.NewRuleScorer(scoring.WithWeights(scoring.Weights{Fit: 2}))
			scores, err := scorer.Score(context.Background(), model.Profile{}, model.Item{})
			So(err, ShouldBeNil)
			So(scores.Overall, ShouldBeBetweenOrEqual, 0, 100)
		})
	})
}

func TestRuleScorer_FitScore(t *testing.T) {
	Convey("Given a rule scorer", t, func() {
		scorer := scoring.NewRuleScorer()
		ctx := context.Background()

		Convey("When scoring an hourglass profile against a dress", func() {
			profile := model.Profile{BodyShape: model.ShapeHourglass}
			scores, err := scorer.Score(ctx, profile, model.Item{Category: model.CategoryDress})

			So(err, ShouldBeNil)
			So(scores.Fit, ShouldEqual, 90)
		})

		Convey("When the item text carries flattering keywords", func() {
			profile := model.Profile{BodyShape: model.ShapeHourglass}
			item := model.Item{
				Category:    model.CategoryTop,
				Title:       "Belted wrap blouse",
				Description: "A fitted silhouette",
			}
			scores, err := scorer.Score(ctx, profile, item)

			// base 85 plus 5 for each of belted, wrap, fitted
			So(err, ShouldBeNil)
			So(scores.Fit, ShouldEqual, 100)
		})

		Convey("When keyword bonuses would exceed 100", func() {
			profile := model.Profile{BodyShape: model.ShapeHourglass}
			item := model.Item{
				Category:    model.CategoryDress,
				Title:       "Belted wrap dress with fitted cinched waist",
				Description: "defined silhouette",
			}
			scores, err := scorer.Score(ctx, profile, item)

			So(err, ShouldBeNil)
			So(scores.Fit, ShouldEqual, 100)
		})

		Convey("When the body shape is unknown", func() {
			scores, err := scorer.Score(ctx, model.Profile{}, model.Item{Category: model.CategoryTop})

			So(err, ShouldBeNil)
			So(scores.Fit, ShouldEqual, 75)
		})
	})
}

func TestRuleScorer_StyleScore(t *testing.T) {
	Convey("Given a rule scorer", t, func() {
		scorer := scoring.NewRuleScorer()
		ctx := context.Background()

		Convey("A direct style match should score 90", func() {
			profile := model.Profile{PreferredStyle: "vintage"}
			scores, err := scorer.Score(ctx, profile, model.Item{Style: "vintage"})

			So(err, ShouldBeNil)
			So(scores.Style, ShouldEqual, 90)
		})

		Convey("Substring containment should count as a direct match", func() {
			profile := model.Profile{PreferredStyle: "vintage chic"}
			scores, err := scorer.Score(ctx, profile, model.Item{Style: "vintage"})

			So(err, ShouldBeNil)
			So(scores.Style, ShouldEqual, 90)
		})

		Convey("Keyword hits should score from the 70 base", func() {
			profile := model.Profile{PreferredStyle: "vintage"}
			item := model.Item{Style: "classic", Title: "Retro denim jacket"}
			scores, err := scorer.Score(ctx, profile, item)

			// hits: retro (title), classic (style)
			So(err, ShouldBeNil)
			So(scores.Style, ShouldEqual, 80)
		})

		Convey("No style signal should hit the 60 floor", func() {
			profile := model.Profile{PreferredStyle: "gothic"}
			item := model.Item{Style: "sporty", Title: "Running shorts"}
			scores, err := scorer.Score(ctx, profile, item)

			So(err, ShouldBeNil)
			So(scores.Style, ShouldEqual, 60)
		})

		Convey("An empty preferred style should score neutral", func() {
			scores, err := scorer.Score(ctx, model.Profile{}, model.Item{Style: "vintage"})

			So(err, ShouldBeNil)
			So(scores.Style, ShouldEqual, 75)
		})

		Convey("Style matching should be case insensitive", func() {
			profile := model.Profile{PreferredStyle: "Vintage"}
			scores, err := scorer.Score(ctx, profile, model.Item{Style: "VINTAGE"})

			So(err, ShouldBeNil)
			So(scores.Style, ShouldEqual, 90)
		})
	})
}

func TestRuleScorer_TrendScore(t *testing.T) {
	Convey("Given a rule scorer banding engagement", t, func() {
		scorer := scoring.NewRuleScorer()
		ctx := context.Background()

		score := func(likes, saves int) float64 {
			scores, err := scorer.Score(ctx, model.Profile{}, model.Item{Likes: likes, Saves: saves})
			So(err, ShouldBeNil)
			return scores.Trend
		}

		Convey("Engagement at or above 1000 should score 100", func() {
			So(score(2000, 0), ShouldEqual, 100) // 1400
			So(score(1000, 231), ShouldEqual, 100)
		})

		Convey("Engagement at or above 500 should score 80", func() {
			So(score(1000, 0), ShouldEqual, 80) // 700
		})

		Convey("Engagement at or above 100 should score 60", func() {
			So(score(100, 30), ShouldEqual, 60) // 109
		})

		Convey("Low engagement should score 40", func() {
			So(score(0, 0), ShouldEqual, 40)
			So(score(50, 40), ShouldEqual, 40) // 87
		})

		Convey("Saves should weigh heavier than likes", func() {
			So(score(100, 0), ShouldEqual, 40) // 70
			So(score(0, 100), ShouldEqual, 60) // 130
		})
	})
}

func TestRuleScorer_FeedbackScore(t *testing.T) {
	Convey("Given a rule scorer", t, func() {
		ctx := context.Background()

		Convey("Without a feedback source the component is neutral", func() {
			scorer := scoring.NewRuleScorer()
			scores, err := scorer.Score(ctx, model.Profile{}, model.Item{})

			So(err, ShouldBeNil)
			So(scores.Feedback, ShouldEqual, 75)
		})

		Convey("A wired feedback source should supply the component", func() {
			scorer := scoring.NewRuleScorer(scoring.WithFeedbackSource(stubFeedback{score: 42, ok: true}))
			scores, err := scorer.Score(ctx, model.Profile{}, model.Item{})

			So(err, ShouldBeNil)
			So(scores.Feedback, ShouldEqual, 42)
		})

		Convey("A source with no data should fall back to neutral", func() {
			scorer := scoring.NewRuleScorer(scoring.WithFeedbackSource(stubFeedback{ok: false}))
			scores, err := scorer.Score(ctx, model.Profile{}, model.Item{})

			So(err, ShouldBeNil)
			So(scores.Feedback, ShouldEqual, 75)
		})
	})
}

func TestRuleScorer_Overall(t *testing.T) {
	Convey("Given a rule scorer with default weights", t, func() {
		scorer := scoring.NewRuleScorer()
		ctx := context.Background()

		Convey("The overall score should be the weighted component sum", func() {
			profile := model.Profile{BodyShape: model.ShapeHourglass, PreferredStyle: "vintage"}
			item := model.Item{Category: model.CategoryTop, Style: "vintage"}
			scores, err := scorer.Score(ctx, profile, item)

			// fit 85*0.4 + style 90*0.3 + trend 40*0.2 + feedback 75*0.1 = 76.5
			So(err, ShouldBeNil)
			So(scores.Overall, ShouldEqual, 76.5)
		})

		Convey("The explanation should band on the overall score", func() {
			profile := model.Profile{BodyShape: model.ShapeHourglass, PreferredStyle: "vintage"}
			scores, err := scorer.Score(ctx, profile, model.Item{
				Category: model.CategoryDress,
				Style:    "vintage",
				Likes:    2000,
			})

			// fit 90*0.4 + style 90*0.3 + trend 100*0.2 + feedback 75*0.1 = 90.5
			So(err, ShouldBeNil)
			So(scores.Overall, ShouldEqual, 90.5)
			So(scores.Explanation, ShouldStartWith, "Excellent match!")
		})

		Convey("A poor fit should earn the lowest explanation band", func() {
			scores, err := scorer.Score(ctx, model.Profile{PreferredStyle: "gothic"}, model.Item{Style: "sporty"})

			// fit 75*0.4 + style 60*0.3 + trend 40*0.2 + feedback 75*0.1 = 63.5
			So(err, ShouldBeNil)
			So(scores.Overall, ShouldEqual, 63.5)
			So(scores.Explanation, ShouldStartWith, "Consider alternatives.")
		})
	})
}

func TestRuleScorer_StylingTips(t *testing.T) {
	Convey("Given a rule scorer", t, func() {
		scorer := scoring.NewRuleScorer()
		ctx := context.Background()

		Convey("Tips should combine category and shape tips, capped at 3", func() {
			profile := model.Profile{BodyShape: model.ShapeHourglass}
			scores, err := scorer.Score(ctx, profile, model.Item{Category: model.CategoryTop})

			So(err, ShouldBeNil)
			So(len(scores.StylingTips), ShouldEqual, 3)
			So(scores.StylingTips[0], ShouldEqual, "Tuck in for a more polished look")
		})

		Convey("An uncovered category still gets shape tips", func() {
			profile := model.Profile{BodyShape: model.ShapePear}
			scores, err := scorer.Score(ctx, profile, model.Item{Category: model.CategoryShoes})

			So(err, ShouldBeNil)
			So(len(scores.StylingTips), ShouldEqual, 2)
		})

		Convey("No coverage at all yields no tips", func() {
			scores, err := scorer.Score(ctx, model.Profile{BodyShape: model.ShapeRectangle}, model.Item{Category: model.CategoryShoes})

			So(err, ShouldBeNil)
			So(scores.StylingTips, ShouldBeEmpty)
		})
	})
}

func TestRuleScorer_Cancellation(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		scorer := scoring.NewRuleScorer()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Score should fail fast", func() {
			_, err := scorer.Score(ctx, model.Profile{}, model.Item{})
			So(err, ShouldNotBeNil)
		})
	})
}
