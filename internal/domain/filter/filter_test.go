package filter_test

import (
	"testing"

	"github.com/okian/fitfindr/internal/domain/filter"
	"github.com/okian/fitfindr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func testCatalog() []model.Item {
	return []model.Item{
		{ID: "i1", Style: "vintage", Colors: []string{"Navy", "cream"}},
		{ID: "i2", Style: "streetwear", Colors: []string{"black"}},
		{ID: "i3", Style: "casual", Colors: []string{"navy"}},
		{ID: "i4", Style: "vintage casual", Colors: []string{"red"}},
	}
}

func TestByPreferences(t *testing.T) {
	Convey("Given a small catalog", t, func() {
		items := testCatalog()

		Convey("An empty profile should pass everything", func() {
			got := filter.ByPreferences(model.Profile{}, items)
			So(len(got), ShouldEqual, 4)
		})

		Convey("A style preference should gate on style text", func() {
			got := filter.ByPreferences(model.Profile{PreferredStyle: "vintage"}, items)

			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "i1")
			So(got[1].ID, ShouldEqual, "i4")
		})

		Convey("Style matching should be case insensitive and trimmed", func() {
			got := filter.ByPreferences(model.Profile{PreferredStyle: "  Vintage  "}, items)
			So(len(got), ShouldEqual, 2)
		})

		Convey("Any token of a multi-word preference should match", func() {
			got := filter.ByPreferences(model.Profile{PreferredStyle: "vintage denim"}, items)

			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "i1")
		})

		Convey("Items with empty style text should pass any preference", func() {
			got := filter.ByPreferences(model.Profile{PreferredStyle: "gothic"}, []model.Item{{ID: "bare"}})
			So(len(got), ShouldEqual, 1)
		})

		Convey("Color preferences should gate case-insensitively", func() {
			profile := model.Profile{RecommendedColors: []string{"NAVY"}}
			got := filter.ByPreferences(profile, items)

			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "i1")
			So(got[1].ID, ShouldEqual, "i3")
		})

		Convey("Style and color gates should both apply", func() {
			profile := model.Profile{PreferredStyle: "vintage", RecommendedColors: []string{"navy"}}
			got := filter.ByPreferences(profile, items)

			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, "i1")
		})

		Convey("Filtering should be idempotent", func() {
			profile := model.Profile{PreferredStyle: "vintage"}
			once := filter.ByPreferences(profile, items)
			twice := filter.ByPreferences(profile, once)
			So(twice, ShouldResemble, once)
		})

		Convey("The input slice should not be mutated", func() {
			_ = filter.ByPreferences(model.Profile{PreferredStyle: "casual"}, items)
			So(items[0].ID, ShouldEqual, "i1")
			So(len(items), ShouldEqual, 4)
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given a catalog with no matches for a profile", t, func() {
		items := []model.Item{
			{ID: "i1", Style: "sporty", Colors: []string{"green"}},
			{ID: "i2", Style: "formal", Colors: []string{"black"}},
		}
		profile := model.Profile{PreferredStyle: "bohemian", RecommendedColors: []string{"pink"}}

		Convey("Apply should fall back to the full catalog", func() {
			got := filter.Apply(profile, items)
			So(len(got), ShouldEqual, 2)
		})
	})

	Convey("Given a catalog with matches", t, func() {
		items := testCatalog()

		Convey("Apply should return only the matches", func() {
			got := filter.Apply(model.Profile{PreferredStyle: "streetwear"}, items)
			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, "i2")
		})
	})
}
