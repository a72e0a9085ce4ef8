package gametime_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/gamepulse/internal/domain/gametime"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseGameTime(t *testing.T) {
	Convey("Given regulation clock labels", t, func() {
		Convey("Then the end of the fourth is exactly sixty", func() {
			So(gametime.ParseGameTime("0:00 4th"), ShouldEqual, 60.0)
		})

		Convey("Then each period starts fifteen minutes after the last", func() {
			So(gametime.ParseGameTime("15:00 1st"), ShouldEqual, 0.0)
			So(gametime.ParseGameTime("15:00 2nd"), ShouldEqual, 15.0)
			So(gametime.ParseGameTime("15:00 3rd"), ShouldEqual, 30.0)
			So(gametime.ParseGameTime("7:30 4th"), ShouldEqual, 52.5)
		})

		Convey("Then game time increases as the clock runs down within a period", func() {
			prev := -1.0
			for m := 15; m >= 0; m-- {
				for _, s := range []int{59, 30, 0} {
					if m == 15 && s != 0 {
						continue
					}
					gt := gametime.ParseGameTime(fmt.Sprintf("%d:%02d 2nd", m, s))
					So(gt, ShouldBeGreaterThan, prev)
					prev = gt
				}
			}
		})
	})

	Convey("Given overtime labels", t, func() {
		Convey("Then anything containing the marker maps to sixty", func() {
			So(gametime.ParseGameTime("0:00 OT"), ShouldEqual, 60.0)
			So(gametime.ParseGameTime("12:44 2OT"), ShouldEqual, 60.0)
			So(gametime.ParseGameTime("OT"), ShouldEqual, 60.0)
			So(gametime.ParseGameTime("garbage OT garbage"), ShouldEqual, 60.0)
		})
	})

	Convey("Given malformed labels", t, func() {
		Convey("Then the wrong token count degrades to zero", func() {
			So(gametime.ParseGameTime(""), ShouldEqual, 0.0)
			So(gametime.ParseGameTime("11:01"), ShouldEqual, 0.0)
			So(gametime.ParseGameTime("11:01 1st extra"), ShouldEqual, 0.0)
		})

		Convey("Then an unknown period counts as the first", func() {
			So(gametime.ParseGameTime("10:00 5th"), ShouldEqual, 5.0)
		})

		Convey("Then an unreadable clock counts as no time remaining", func() {
			So(gametime.ParseGameTime("ab:cd 3rd"), ShouldEqual, 45.0)
			So(gametime.ParseGameTime("1:2:3 2nd"), ShouldEqual, 30.0)
		})

		Convey("Then a bare minute count is accepted", func() {
			So(gametime.ParseGameTime("2.5 1st"), ShouldEqual, 12.5)
		})
	})
}

func TestParseGameTimeStrict(t *testing.T) {
	Convey("Given the strict parser", t, func() {
		Convey("When the label is valid", func() {
			gt, err := gametime.ParseGameTimeStrict("11:01 1st")

			Convey("Then it matches the permissive parser", func() {
				So(err, ShouldBeNil)
				So(gt, ShouldEqual, gametime.ParseGameTime("11:01 1st"))
			})
		})

		Convey("When the label is malformed", func() {
			for _, label := range []string{"", "11:01", "10:00 5th", "ab:cd 3rd"} {
				_, err := gametime.ParseGameTimeStrict(label)
				So(errors.Is(err, gametime.ErrMalformedClock), ShouldBeTrue)
			}
		})

		Convey("When the label is overtime", func() {
			gt, err := gametime.ParseGameTimeStrict("3:00 OT")
			So(err, ShouldBeNil)
			So(gt, ShouldEqual, 60.0)
		})
	})
}

func TestFromClock(t *testing.T) {
	Convey("Given numeric periods", t, func() {
		Convey("Then regulation matches the label parser", func() {
			So(gametime.FromClock(3, "7:30"), ShouldEqual, gametime.ParseGameTime("7:30 3rd"))
		})

		Convey("Then overtime keeps its real value", func() {
			So(gametime.FromClock(5, "10:00"), ShouldEqual, 65.0)
		})

		Convey("Then an unreadable clock counts as no time remaining", func() {
			So(gametime.FromClock(2, "soon"), ShouldEqual, 30.0)
		})
	})
}

func TestPeriodLabel(t *testing.T) {
	Convey("Given numeric periods", t, func() {
		So(gametime.PeriodLabel(1), ShouldEqual, "1st")
		So(gametime.PeriodLabel(4), ShouldEqual, "4th")
		So(gametime.PeriodLabel(5), ShouldEqual, "OT")
		So(gametime.PeriodLabel(6), ShouldEqual, "2OT")
		So(gametime.PeriodLabel(0), ShouldEqual, "1st")
		So(gametime.Label("3:12", 2), ShouldEqual, "3:12 2nd")
	})
}

func TestTimelineLookup(t *testing.T) {
	base := time.Date(2025, 9, 27, 23, 0, 0, 0, time.UTC)
	at := func(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

	Convey("Given a timeline of five samples", t, func() {
		tl := gametime.NewTimeline()
		So(tl.Add(gametime.Sample{Wall: at(0), Period: 1, Clock: "15:00"}), ShouldBeTrue)
		So(tl.Add(gametime.Sample{Wall: at(60), Period: 1, Clock: "14:00"}), ShouldBeTrue)
		So(tl.Add(gametime.Sample{Wall: at(120), Period: 1, Clock: "13:30"}), ShouldBeTrue)
		So(tl.Add(gametime.Sample{Wall: at(180), Period: 1, Clock: "12:00"}), ShouldBeTrue)
		So(tl.Add(gametime.Sample{Wall: at(240), Period: 1, Clock: "11:00"}), ShouldBeTrue)

		Convey("When samples are not strictly later or unreadable", func() {
			So(tl.Add(gametime.Sample{Wall: at(240), Period: 1, Clock: "10:00"}), ShouldBeFalse)
			So(tl.Add(gametime.Sample{Wall: at(10), Period: 1, Clock: "10:00"}), ShouldBeFalse)
			So(tl.Add(gametime.Sample{Wall: at(500), Period: 1, Clock: "later"}), ShouldBeFalse)
			So(tl.Len(), ShouldEqual, 5)
		})

		Convey("When the instant precedes the first sample", func() {
			_, ok := tl.Lookup(at(-1))
			So(ok, ShouldBeFalse)
		})

		Convey("When the instant falls on or after an interior sample", func() {
			gt, ok := tl.Lookup(at(0))
			So(ok, ShouldBeTrue)
			So(gt, ShouldEqual, 0.0)

			gt, ok = tl.Lookup(at(90))
			So(ok, ShouldBeTrue)
			So(gt, ShouldEqual, 1.0)

			gt, ok = tl.Lookup(at(150))
			So(ok, ShouldBeTrue)
			So(gt, ShouldEqual, 1.5)
		})

		Convey("When the latest sample is one of the final two", func() {
			_, ok := tl.Lookup(at(180))
			So(ok, ShouldBeFalse)
			_, ok = tl.Lookup(at(1000))
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an empty timeline", t, func() {
		_, ok := gametime.NewTimeline().Lookup(time.Now())
		So(ok, ShouldBeFalse)
	})
}
