package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/gamepulse/internal/adapters/repository"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

// storeContract runs the behavior every backend shares.
func storeContract(s repository.Store) {
	ctx := context.Background()

	Convey("When a document is stored", func() {
		So(s.Put(ctx, repository.KindExport, "dukevsyracuse", []byte(`{"times":[1]}`)), ShouldBeNil)

		Convey("Then it can be read back", func() {
			doc, err := s.Get(ctx, repository.KindExport, "dukevsyracuse")
			So(err, ShouldBeNil)
			So(string(doc), ShouldEqual, `{"times":[1]}`)
		})

		Convey("Then it is listed under its kind only", func() {
			keys, err := s.List(ctx, repository.KindExport)
			So(err, ShouldBeNil)
			So(keys, ShouldResemble, []string{"dukevsyracuse"})

			keys, err = s.List(ctx, repository.KindReport)
			So(err, ShouldBeNil)
			So(keys, ShouldBeEmpty)
		})

		Convey("Then storing it again replaces it", func() {
			So(s.Put(ctx, repository.KindExport, "dukevsyracuse", []byte(`{}`)), ShouldBeNil)
			doc, err := s.Get(ctx, repository.KindExport, "dukevsyracuse")
			So(err, ShouldBeNil)
			So(string(doc), ShouldEqual, `{}`)
		})
	})

	Convey("When several documents are stored", func() {
		for _, k := range []string{"uscvillinois", "lsuvolemiss", "utahvsvandy"} {
			So(s.Put(ctx, repository.KindExport, k, []byte(`{}`)), ShouldBeNil)
		}

		Convey("Then keys are listed in order", func() {
			keys, err := s.List(ctx, repository.KindExport)
			So(err, ShouldBeNil)
			So(keys, ShouldResemble, []string{"lsuvolemiss", "uscvillinois", "utahvsvandy"})
		})
	})

	Convey("When a document is missing", func() {
		_, err := s.Get(ctx, repository.KindReport, "nothing")

		Convey("Then ErrNotFound is returned", func() {
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When a key would escape its namespace", func() {
		for _, key := range []string{"", "..", "../x", `a\b`, "a:b"} {
			So(errors.Is(s.Put(ctx, repository.KindReport, key, nil), repository.ErrInvalidKey), ShouldBeTrue)
			_, err := s.Get(ctx, repository.KindReport, key)
			So(errors.Is(err, repository.ErrInvalidKey), ShouldBeTrue)
		}
	})
}

func TestFileStore(t *testing.T) {
	Convey("Given a file store", t, func() {
		root := t.TempDir()
		s := repository.NewFileStore(root)
		defer s.Close()

		storeContract(s)

		Convey("When a kind has its own directory", func() {
			out := filepath.Join(root, "outputGraphs")
			s := repository.NewFileStore(root, repository.WithKindDir(repository.KindReport, out))
			So(s.Put(context.Background(), repository.KindReport, "game_analysis_duke_syracuse", []byte(`{}`)), ShouldBeNil)

			Convey("Then documents land there as .json files", func() {
				_, err := os.Stat(filepath.Join(out, "game_analysis_duke_syracuse.json"))
				So(err, ShouldBeNil)
			})
		})

		Convey("When the directory holds other files", func() {
			dir := filepath.Join(root, string(repository.KindExport))
			So(os.MkdirAll(filepath.Join(dir, "nested.json"), 0o750), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o600), ShouldBeNil)

			Convey("Then only json documents are listed", func() {
				keys, err := s.List(context.Background(), repository.KindExport)
				So(err, ShouldBeNil)
				So(keys, ShouldResemble, []string{"a"})
			})
		})
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("GAMEPULSE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GAMEPULSE_TEST_REDIS_ADDR not set")
	}

	Convey("Given a redis store with a fresh prefix", t, func() {
		client := redis.NewClient(&redis.Options{Addr: addr})
		s := repository.NewRedisStore(client, repository.WithPrefix("gamepulse-test-"+uuid.NewString()))
		defer s.Close()
		So(s.Ping(context.Background()), ShouldBeNil)

		storeContract(s)
	})
}
