package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/okian/gamepulse/internal/adapters/reddit"
	service "github.com/okian/gamepulse/internal/app"
	"github.com/okian/gamepulse/internal/config"
	"github.com/okian/gamepulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const thread = `[
	{"kind": "Listing", "data": {"children": []}},
	{"kind": "Listing", "data": {"children": [
		{"kind": "t1", "data": {"id": "a", "created_utc": 2, "body_html": "second", "replies": ""}},
		{"kind": "t1", "data": {"id": "b", "created_utc": 1, "body_html": "first", "replies": ""}}
	]}}
]`

func fetchConfig() config.FetchConfig {
	cfg := config.New(context.Background()).Fetch
	cfg.ClientID = "id"
	cfg.ClientSecret = "secret"
	cfg.RatePerSecond = 0
	cfg.CooldownMS = 0
	return cfg
}

func TestRedditSource(t *testing.T) {
	ctx := context.Background()

	Convey("Given fetch settings without credentials", t, func() {
		cfg := config.New(ctx).Fetch

		Convey("Then no source is built", func() {
			So(service.NewRedditSource(cfg, logger.Get()), ShouldBeNil)
		})
	})

	Convey("Given a comment API", t, func() {
		var tokens, posts atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
			tokens.Add(1)
			_, _ = w.Write([]byte(`{"access_token": "tok"}`))
		})
		mux.HandleFunc("GET /comments/abc", func(w http.ResponseWriter, r *http.Request) {
			posts.Add(1)
			if r.Header.Get("Authorization") != "bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(thread))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		src := service.NewRedditSource(fetchConfig(), logger.Get(), reddit.WithBaseURLs(srv.URL+"/token", srv.URL))

		Convey("When collecting twice", func() {
			first, err := src.Collect(ctx, "abc")
			So(err, ShouldBeNil)
			second, err := src.Collect(ctx, "abc")
			So(err, ShouldBeNil)

			Convey("Then it authenticates once and returns comments oldest first", func() {
				So(tokens.Load(), ShouldEqual, 1)
				So(posts.Load(), ShouldEqual, 2)
				So(first, ShouldHaveLength, 2)
				So(first[0].ID, ShouldEqual, "b")
				So(second, ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given a comment API whose first token has expired", t, func() {
		var tokens, posts atomic.Int32
		var accepted atomic.Value
		accepted.Store("bearer tok2")
		mux := http.NewServeMux()
		mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
			n := tokens.Add(1)
			_, _ = fmt.Fprintf(w, `{"access_token": "tok%d"}`, n)
		})
		mux.HandleFunc("GET /comments/abc", func(w http.ResponseWriter, r *http.Request) {
			posts.Add(1)
			if r.Header.Get("Authorization") != accepted.Load().(string) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(thread))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		src := service.NewRedditSource(fetchConfig(), logger.Get(), reddit.WithBaseURLs(srv.URL+"/token", srv.URL))

		Convey("When collecting", func() {
			comments, err := src.Collect(ctx, "abc")

			Convey("Then it fetches a new token and retries the thread", func() {
				So(err, ShouldBeNil)
				So(comments, ShouldHaveLength, 2)
				So(tokens.Load(), ShouldEqual, 2)
				So(posts.Load(), ShouldEqual, 2)
			})

			Convey("Then the new token is reused afterwards", func() {
				_, err := src.Collect(ctx, "abc")
				So(err, ShouldBeNil)
				So(tokens.Load(), ShouldEqual, 2)
			})
		})

		Convey("When no token is ever accepted", func() {
			accepted.Store("bearer never")
			_, err := src.Collect(ctx, "abc")

			Convey("Then it gives up after one renewal", func() {
				var status *reddit.StatusError
				So(errors.As(err, &status), ShouldBeTrue)
				So(status.Code, ShouldEqual, http.StatusUnauthorized)
				So(tokens.Load(), ShouldEqual, 2)
			})
		})
	})
}
