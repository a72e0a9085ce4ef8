package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/gamepulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.WindowSeconds, convey.ShouldEqual, 45)
			convey.So(cfg.StepSecondsOrDefault(), convey.ShouldEqual, 11)
			convey.So(cfg.LookbackMinutes, convey.ShouldEqual, 0.5)
			convey.So(cfg.SkipFiles, convey.ShouldResemble, []string{"fsuvsvirginia.json", "syracusevsclemson.json"})
			convey.So(cfg.Fetch.BatchSize, convey.ShouldEqual, 700)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the window is not positive", func() {
			cfg.WindowSeconds = 0

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the store backend is unknown", func() {
			cfg.StoreBackend = "s3"

			convey.Convey("Then validation names the backend", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "s3")
			})
		})

		convey.Convey("When the fetch max_seen bound is negative", func() {
			cfg.Fetch.MaxSeen = -1

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_seen")
			})
		})

		convey.Convey("When an explicit step is set", func() {
			cfg.StepSeconds = 5

			convey.Convey("Then it wins over the quarter window", func() {
				convey.So(cfg.StepSecondsOrDefault(), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When the window is tiny", func() {
			cfg.WindowSeconds = 3

			convey.Convey("Then the step never drops below one second", func() {
				convey.So(cfg.StepSecondsOrDefault(), convey.ShouldEqual, 1)
			})
		})
	})
}
