package inflight_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/handin/internal/domain/inflight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryTracker(t *testing.T) {
	Convey("Given a new InMemoryTracker", t, func() {
		ctx := context.Background()
		tr := inflight.NewInMemoryTracker()

		Convey("Then it should start empty", func() {
			So(tr.Size(), ShouldEqual, 0)
		})

		Convey("When a token begins", func() {
			err := tr.Begin(ctx, "form-1")

			Convey("Then it should be recorded", func() {
				So(err, ShouldBeNil)
				So(tr.Size(), ShouldEqual, 1)
			})

			Convey("And the same token begins again", func() {
				err := tr.Begin(ctx, "form-1")

				Convey("Then it should be refused", func() {
					So(err, ShouldEqual, inflight.ErrInFlight)
					So(tr.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the token ends", func() {
				tr.End(ctx, "form-1")

				Convey("Then it may begin again", func() {
					So(tr.Size(), ShouldEqual, 0)
					So(tr.Begin(ctx, "form-1"), ShouldBeNil)
				})
			})
		})

		Convey("When an unknown token ends", func() {
			tr.End(ctx, "never-started")

			Convey("Then nothing should change", func() {
				So(tr.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded tracker", t, func() {
		ctx := context.Background()
		tr := inflight.NewInMemoryTracker(inflight.WithMaxSize(2))

		So(tr.Begin(ctx, "a"), ShouldBeNil)
		So(tr.Begin(ctx, "b"), ShouldBeNil)

		Convey("When it is full", func() {
			err := tr.Begin(ctx, "c")

			Convey("Then new tokens should be refused", func() {
				So(err, ShouldEqual, inflight.ErrFull)
				So(tr.Size(), ShouldEqual, 2)
			})

			Convey("And a duplicate should still report ErrInFlight", func() {
				So(tr.Begin(ctx, "a"), ShouldEqual, inflight.ErrInFlight)
			})
		})
	})
}

func TestInMemoryTrackerConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on the same token", t, func() {
		ctx := context.Background()
		tr := inflight.NewInMemoryTracker()

		var wins atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if tr.Begin(ctx, "shared") == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one should win", func() {
			So(wins.Load(), ShouldEqual, 1)
		})
	})

	Convey("Given many distinct tokens", t, func() {
		ctx := context.Background()
		tr := inflight.NewInMemoryTracker()

		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				token := fmt.Sprintf("form-%d", i)
				_ = tr.Begin(ctx, token)
				tr.End(ctx, token)
			}(i)
		}
		wg.Wait()

		Convey("Then every token should be released", func() {
			So(tr.Size(), ShouldEqual, 0)
		})
	})
}
