package loader_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/pagewatch/internal/domain/loader"
	"github.com/smartystreets/goconvey/convey"
)

func TestCollapse(t *testing.T) {
	convey.Convey("Given a collapsing loader whose load blocks", t, func() {
		var renders atomic.Int32
		var collapsed atomic.Int32
		started := make(chan struct{}, 1)
		release := make(chan struct{})

		l := loader.New(loader.Collapse, func(ctx context.Context) (string, error) {
			renders.Add(1)
			started <- struct{}{}
			<-release
			return "<ul></ul>", nil
		}, loader.WithOnCollapsed(func() { collapsed.Add(1) }))

		convey.Convey("When two loads are issued while the first is pending", func() {
			var wg sync.WaitGroup
			results := make([]loader.Result[string], 2)
			errs := make([]error, 2)

			wg.Add(1)
			go func() {
				defer wg.Done()
				results[0], errs[0] = l.Load(context.Background())
			}()
			<-started
			convey.So(l.Loading(), convey.ShouldBeTrue)

			wg.Add(1)
			go func() {
				defer wg.Done()
				results[1], errs[1] = l.Load(context.Background())
			}()
			time.Sleep(50 * time.Millisecond)
			close(release)
			wg.Wait()

			convey.Convey("Then exactly one render pass ran and both callers got it", func() {
				convey.So(renders.Load(), convey.ShouldEqual, 1)
				convey.So(errs[0], convey.ShouldBeNil)
				convey.So(errs[1], convey.ShouldBeNil)
				convey.So(results[0].Value, convey.ShouldEqual, "<ul></ul>")
				convey.So(results[1].Value, convey.ShouldEqual, "<ul></ul>")
				convey.So(results[0].Shared, convey.ShouldBeFalse)
				convey.So(results[1].Shared, convey.ShouldBeTrue)
				convey.So(collapsed.Load(), convey.ShouldEqual, 1)
				convey.So(l.Loading(), convey.ShouldBeFalse)
			})
		})
	})

	convey.Convey("Given sequential loads", t, func() {
		var renders atomic.Int32
		l := loader.New("", func(ctx context.Context) (int, error) {
			return int(renders.Add(1)), nil
		})

		first, err1 := l.Load(context.Background())
		second, err2 := l.Load(context.Background())

		convey.So(l.Policy(), convey.ShouldEqual, loader.Collapse)
		convey.So(err1, convey.ShouldBeNil)
		convey.So(err2, convey.ShouldBeNil)
		convey.So(first.Value, convey.ShouldEqual, 1)
		convey.So(second.Value, convey.ShouldEqual, 2)
	})

	convey.Convey("Given a load that fails", t, func() {
		boom := errors.New("boom")
		l := loader.New(loader.Collapse, func(ctx context.Context) (string, error) {
			return "", boom
		})

		_, err := l.Load(context.Background())
		convey.So(errors.Is(err, boom), convey.ShouldBeTrue)
		convey.So(l.Loading(), convey.ShouldBeFalse)
	})

	convey.Convey("Given a waiting caller that gives up", t, func() {
		release := make(chan struct{})
		defer close(release)
		l := loader.New(loader.Collapse, func(ctx context.Context) (string, error) {
			<-release
			return "late", nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := l.Load(ctx)

		convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
	})
}

func TestSupersede(t *testing.T) {
	convey.Convey("Given a superseding loader", t, func() {
		var superseded atomic.Int32
		var calls atomic.Int32
		started := make(chan struct{}, 1)
		causes := make(chan error, 1)

		l := loader.New(loader.Supersede, func(ctx context.Context) (string, error) {
			if calls.Add(1) == 1 {
				started <- struct{}{}
				<-ctx.Done()
				causes <- context.Cause(ctx)
				return "", ctx.Err()
			}
			return "fresh", nil
		}, loader.WithOnSuperseded(func() { superseded.Add(1) }))

		convey.Convey("When a second load starts before the first finishes", func() {
			firstErr := make(chan error, 1)
			go func() {
				_, err := l.Load(context.Background())
				firstErr <- err
			}()
			<-started

			res, err := l.Load(context.Background())

			convey.Convey("Then the newer load wins and the older one is superseded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Value, convey.ShouldEqual, "fresh")
				convey.So(errors.Is(<-firstErr, loader.ErrSuperseded), convey.ShouldBeTrue)
				convey.So(errors.Is(<-causes, loader.ErrSuperseded), convey.ShouldBeTrue)
				convey.So(superseded.Load(), convey.ShouldEqual, 1)
				convey.So(l.Loading(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestParsePolicy(t *testing.T) {
	convey.Convey("Given config values", t, func() {
		p, err := loader.ParsePolicy(" Supersede")
		convey.So(err, convey.ShouldBeNil)
		convey.So(p, convey.ShouldEqual, loader.Supersede)

		_, err = loader.ParsePolicy("queue")
		convey.So(errors.Is(err, loader.ErrUnknownPolicy), convey.ShouldBeTrue)
	})
}

func TestCollapsePanic(t *testing.T) {
	convey.Convey("Given a collapsing loader whose load panics", t, func() {
		l := loader.New(loader.Collapse, func(context.Context) (string, error) {
			panic("template exploded")
		})

		convey.Convey("When it is loaded", func() {
			_, err := l.Load(context.Background())

			convey.Convey("Then the caller gets an error instead of a crash", func() {
				convey.So(errors.Is(err, loader.ErrPanicked), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "template exploded")
				convey.So(l.Loading(), convey.ShouldBeFalse)
			})
		})
	})
}
