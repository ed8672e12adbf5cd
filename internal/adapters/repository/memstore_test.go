package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/fitfindr/internal/adapters/repository"
	"github.com/okian/fitfindr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore_Upsert(t *testing.T) {
	Convey("Given an empty catalog store", t, func() {
		store := repository.NewMemStore()
		ctx := context.Background()

		Convey("Inserting a new item should report true", func() {
			So(store.Upsert(ctx, "vintage", model.Item{ID: "i1", Title: "Jacket"}), ShouldBeTrue)
			So(store.Count(ctx), ShouldEqual, 1)
		})

		Convey("Replacing an existing item should report false", func() {
			store.Upsert(ctx, "vintage", model.Item{ID: "i1", Title: "Jacket"})

			So(store.Upsert(ctx, "vintage", model.Item{ID: "i1", Title: "Updated"}), ShouldBeFalse)
			So(store.Count(ctx), ShouldEqual, 1)

			got, ok := store.Get(ctx, "i1")
			So(ok, ShouldBeTrue)
			So(got.Title, ShouldEqual, "Updated")
		})

		Convey("An item without an id should be rejected", func() {
			So(store.Upsert(ctx, "vintage", model.Item{Title: "No ID"}), ShouldBeFalse)
			So(store.Count(ctx), ShouldEqual, 0)
		})

		Convey("The same item can be filed under multiple keywords", func() {
			store.Upsert(ctx, "vintage", model.Item{ID: "i1"})
			store.Upsert(ctx, "denim", model.Item{ID: "i1"})

			So(store.Count(ctx), ShouldEqual, 1)
			So(len(store.ListByKeyword(ctx, "vintage")), ShouldEqual, 1)
			So(len(store.ListByKeyword(ctx, "denim")), ShouldEqual, 1)
		})
	})
}

func TestMemStore_Listing(t *testing.T) {
	Convey("Given a store with several items", t, func() {
		store := repository.NewMemStore()
		ctx := context.Background()
		store.Upsert(ctx, "vintage", model.Item{ID: "i1"})
		store.Upsert(ctx, "vintage", model.Item{ID: "i2"})
		store.Upsert(ctx, "casual", model.Item{ID: "i3"})

		Convey("List should return all items in insertion order", func() {
			items := store.List(ctx)

			So(len(items), ShouldEqual, 3)
			So(items[0].ID, ShouldEqual, "i1")
			So(items[1].ID, ShouldEqual, "i2")
			So(items[2].ID, ShouldEqual, "i3")
		})

		Convey("ListByKeyword should scope to the keyword", func() {
			items := store.ListByKeyword(ctx, "vintage")

			So(len(items), ShouldEqual, 2)
			So(items[0].ID, ShouldEqual, "i1")
		})

		Convey("Keyword lookup should normalize case and whitespace", func() {
			So(len(store.ListByKeyword(ctx, "  VINTAGE ")), ShouldEqual, 2)
		})

		Convey("An unknown keyword should yield an empty slice", func() {
			So(store.ListByKeyword(ctx, "gothic"), ShouldBeEmpty)
		})

		Convey("Get should miss on unknown ids", func() {
			_, ok := store.Get(ctx, "nope")
			So(ok, ShouldBeFalse)
		})

		Convey("Re-upserting should not disturb insertion order", func() {
			store.Upsert(ctx, "vintage", model.Item{ID: "i1", Title: "Updated"})

			items := store.List(ctx)
			So(items[0].ID, ShouldEqual, "i1")
			So(items[0].Title, ShouldEqual, "Updated")
		})
	})
}

func TestMemStore_Concurrency(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		store := repository.NewMemStore()
		ctx := context.Background()

		const workers = 10
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					store.Upsert(ctx, "vintage", model.Item{ID: fmt.Sprintf("w%d_i%d", w, i)})
					store.List(ctx)
					store.Count(ctx)
				}
			}(w)
		}
		wg.Wait()

		Convey("All items should land exactly once", func() {
			So(store.Count(ctx), ShouldEqual, workers*50)
			So(len(store.ListByKeyword(ctx, "vintage")), ShouldEqual, workers*50)
		})
	})
}
