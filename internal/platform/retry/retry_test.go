package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/gamepulse/internal/platform/retry"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	errTransient = errors.New("transient")
	errThrottled = errors.New("throttled")
	errFatal     = errors.New("fatal")
)

func classify(err error) retry.Action {
	switch {
	case errors.Is(err, errFatal):
		return retry.Stop
	case errors.Is(err, errThrottled):
		return retry.After
	default:
		return retry.Retry
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()
	policy := retry.Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond, RateLimitBackoff: 5 * time.Millisecond}

	Convey("Given an operation that fails once", t, func() {
		calls := 0
		var waits []time.Duration
		p := policy
		p.OnRetry = func(_ int, _ error, backoff time.Duration) { waits = append(waits, backoff) }

		got, err := retry.Do(ctx, p, classify, func(context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", errTransient
			}
			return "ok", nil
		})

		Convey("Then the second attempt's value is returned", func() {
			So(err, ShouldBeNil)
			So(got, ShouldEqual, "ok")
			So(calls, ShouldEqual, 2)
			So(waits, ShouldResemble, []time.Duration{time.Millisecond})
		})
	})

	Convey("Given an operation that always fails", t, func() {
		calls := 0
		_, err := retry.Do(ctx, policy, classify, func(context.Context) (int, error) {
			calls++
			return 0, errTransient
		})

		Convey("Then it stops after the attempt limit", func() {
			So(calls, ShouldEqual, 3)
			So(errors.Is(err, retry.ErrExhausted), ShouldBeTrue)
			So(errors.Is(err, errTransient), ShouldBeTrue)
		})
	})

	Convey("Given a permanent failure", t, func() {
		calls := 0
		_, err := retry.Do(ctx, policy, classify, func(context.Context) (int, error) {
			calls++
			return 0, errFatal
		})

		Convey("Then it gives up immediately", func() {
			So(calls, ShouldEqual, 1)
			var perm *retry.PermanentError
			So(errors.As(err, &perm), ShouldBeTrue)
			So(errors.Is(err, errFatal), ShouldBeTrue)
		})
	})

	Convey("Given a throttled failure", t, func() {
		var waits []time.Duration
		p := policy
		p.OnRetry = func(_ int, _ error, backoff time.Duration) { waits = append(waits, backoff) }
		_, _ = retry.Do(ctx, p, classify, func(context.Context) (int, error) { return 0, errThrottled })

		Convey("Then the longer backoff is used and doubled", func() {
			So(waits, ShouldResemble, []time.Duration{5 * time.Millisecond, 10 * time.Millisecond})
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p := policy
		p.InitialBackoff = time.Hour
		_, err := retry.Do(cctx, p, classify, func(context.Context) (int, error) { return 0, errTransient })

		Convey("Then the wait is abandoned", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a non-positive attempt limit", t, func() {
		calls := 0
		p := policy
		p.MaxAttempts = 0
		_, err := retry.Do(ctx, p, classify, func(context.Context) (int, error) {
			calls++
			return 0, errTransient
		})

		Convey("Then the operation still runs once", func() {
			So(calls, ShouldEqual, 1)
			So(err, ShouldNotBeNil)
		})
	})
}
