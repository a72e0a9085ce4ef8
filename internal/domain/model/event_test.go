package model_test

import (
	"testing"

	"github.com/okian/gamepulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoringEventTotal(t *testing.T) {
	Convey("Given a scoring event", t, func() {
		e := model.ScoringEvent{GameTime: 30, HomeScore: 14, AwayScore: 7}

		Convey("Then the total adds both sides", func() {
			So(e.Total(), ShouldEqual, 21)
		})
	})

	Convey("Given the zero event", t, func() {
		Convey("Then the total is zero", func() {
			So(model.ScoringEvent{}.Total(), ShouldEqual, 0)
		})
	})
}
