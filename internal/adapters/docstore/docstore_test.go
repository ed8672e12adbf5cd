package docstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/fitfindr/internal/adapters/docstore"
	. "github.com/smartystreets/goconvey/convey"
)

type document struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileStore_SaveLoad(t *testing.T) {
	Convey("Given a file store over a temp directory", t, func() {
		dir := t.TempDir()
		store := docstore.NewFileStore(docstore.WithDir(dir))
		ctx := context.Background()

		Convey("When saving and loading a document", func() {
			So(store.Save(ctx, "sample", document{Name: "a", Count: 3}), ShouldBeNil)

			var got document
			So(store.Load(ctx, "sample", &got), ShouldBeNil)
			So(got, ShouldResemble, document{Name: "a", Count: 3})
		})

		Convey("When saving over an existing document", func() {
			So(store.Save(ctx, "sample", document{Name: "a"}), ShouldBeNil)
			So(store.Save(ctx, "sample", document{Name: "b"}), ShouldBeNil)

			var got document
			So(store.Load(ctx, "sample", &got), ShouldBeNil)
			So(got.Name, ShouldEqual, "b")
		})

		Convey("When loading a missing document", func() {
			got := document{Name: "default"}
			So(store.Load(ctx, "absent", &got), ShouldBeNil)

			Convey("Then the caller's default should be kept", func() {
				So(got.Name, ShouldEqual, "default")
			})
		})

		Convey("When the document on disk is corrupt", func() {
			path := filepath.Join(dir, "broken.json")
			So(os.WriteFile(path, []byte("{not json"), 0o644), ShouldBeNil)

			var got document
			err := store.Load(ctx, "broken", &got)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, docstore.ErrDecode), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			So(store.Save(cancelled, "sample", document{}), ShouldNotBeNil)
			So(store.Load(cancelled, "sample", &document{}), ShouldNotBeNil)
		})

		Convey("Documents should be stored one file per key", func() {
			So(store.Save(ctx, "sample", document{}), ShouldBeNil)

			_, err := os.Stat(filepath.Join(dir, "sample.json"))
			So(err, ShouldBeNil)
		})
	})
}

func TestFileStore_Append(t *testing.T) {
	Convey("Given a file store over a temp directory", t, func() {
		dir := t.TempDir()
		store := docstore.NewFileStore(docstore.WithDir(dir))
		ctx := context.Background()

		Convey("When appending to an absent document", func() {
			So(store.Append(ctx, "log", document{Name: "first"}), ShouldBeNil)

			var got []document
			So(store.Load(ctx, "log", &got), ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].Name, ShouldEqual, "first")
		})

		Convey("When appending repeatedly", func() {
			So(store.Append(ctx, "log", document{Name: "first"}), ShouldBeNil)
			So(store.Append(ctx, "log", document{Name: "second"}), ShouldBeNil)
			So(store.Append(ctx, "log", document{Name: "third"}), ShouldBeNil)

			var got []document
			So(store.Load(ctx, "log", &got), ShouldBeNil)
			So(len(got), ShouldEqual, 3)
			So(got[2].Name, ShouldEqual, "third")
		})

		Convey("When appending to a non-array document", func() {
			So(store.Save(ctx, "log", document{Name: "solo"}), ShouldBeNil)
			So(store.Append(ctx, "log", document{Name: "second"}), ShouldBeNil)

			var got []document
			So(store.Load(ctx, "log", &got), ShouldBeNil)

			Convey("Then the old document becomes the first element", func() {
				So(len(got), ShouldEqual, 2)
				So(got[0].Name, ShouldEqual, "solo")
				So(got[1].Name, ShouldEqual, "second")
			})
		})
	})
}

func TestLogActivity(t *testing.T) {
	Convey("Given a file store", t, func() {
		store := docstore.NewFileStore(docstore.WithDir(t.TempDir()))
		ctx := context.Background()

		Convey("When logging activities", func() {
			So(docstore.LogActivity(ctx, store, "catalog_fetched", map[string]any{"keyword": "vintage"}), ShouldBeNil)
			So(docstore.LogActivity(ctx, store, "feedback_recorded", nil), ShouldBeNil)

			var got []docstore.ActivityRecord
			So(store.Load(ctx, "activity_log", &got), ShouldBeNil)

			So(len(got), ShouldEqual, 2)
			So(got[0].Activity, ShouldEqual, "catalog_fetched")
			So(got[0].Data["keyword"], ShouldEqual, "vintage")
			So(got[1].Timestamp.IsZero(), ShouldBeFalse)
		})
	})
}
