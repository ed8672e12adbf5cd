package config_test

import (
	"runtime"
	"testing"

	"github.com/okian/fitfindr/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.FetchQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxRecommendationLimit, convey.ShouldEqual, 50)
			convey.So(cfg.DefaultRecommendationLimit, convey.ShouldEqual, 10)
			convey.So(cfg.MaxOutfits, convey.ShouldEqual, 5)
			convey.So(cfg.TrendingLimit, convey.ShouldEqual, 10)
			convey.So(cfg.DataDir, convey.ShouldEqual, "data")
			convey.So(cfg.CatalogFetchSize, convey.ShouldEqual, 20)
		})

		convey.Convey("Then default weights should sum to one", func() {
			sum := cfg.FitWeight + cfg.StyleWeight + cfg.TrendWeight + cfg.FeedbackWeight
			convey.So(sum, convey.ShouldAlmostEqual, 1.0, 0.0001)
		})
	})
}
