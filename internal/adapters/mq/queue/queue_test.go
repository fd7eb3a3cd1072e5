package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/laurencestokes/challenger-events-sub000/internal/domain/model"
)

func submission(id string) Submission {
	return model.ScoreRecord{
		ID:         id,
		UserID:     "u1",
		ActivityID: "squat",
		RawValue:   140,
	}
}

func TestEnqueueDequeue(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory queue", t, func() {
		q := NewInMemoryQueue(WithCapacity(10))

		Convey("When submissions are enqueued", func() {
			So(q.Enqueue(ctx, submission("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, submission("b")), ShouldBeTrue)

			Convey("Then the queue reports its length", func() {
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then dequeue yields them in order", func() {
				out := q.Dequeue(ctx)
				first := <-out
				second := <-out
				So(first.ID, ShouldEqual, "a")
				So(second.ID, ShouldEqual, "b")
			})
		})

		Convey("When the queue is closed mid-consumption", func() {
			q.Enqueue(ctx, submission("a"))
			out := q.Dequeue(ctx)
			<-out
			So(q.Close(), ShouldBeNil)

			Convey("Then the dequeue channel closes", func() {
				_, open := <-out
				So(open, ShouldBeFalse)
			})
		})
	})
}

func TestBackpressure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue at capacity", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		So(q.Enqueue(ctx, submission("a")), ShouldBeTrue)
		So(q.Enqueue(ctx, submission("b")), ShouldBeTrue)

		Convey("When another submission arrives", func() {
			ok := q.Enqueue(ctx, submission("c"))

			Convey("Then the enqueue is refused without blocking", func() {
				So(ok, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When space frees up", func() {
			<-q.Dequeue(ctx)
			// Dequeue forwarding races with the next enqueue; settle first.
			time.Sleep(10 * time.Millisecond)

			Convey("Then enqueue succeeds again", func() {
				So(q.Enqueue(ctx, submission("c")), ShouldBeTrue)
			})
		})
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	Convey("Given a closed queue", t, func() {
		q := NewInMemoryQueue()
		So(q.Close(), ShouldBeNil)

		Convey("Then it reports closed", func() {
			So(q.IsClosed(), ShouldBeTrue)
		})

		Convey("Then enqueues are refused", func() {
			So(q.Enqueue(ctx, submission("a")), ShouldBeFalse)
		})

		Convey("Then closing again is a no-op", func() {
			So(q.Close(), ShouldBeNil)
		})
	})

	Convey("Given a cancelled context", t, func() {
		q := NewInMemoryQueue(WithCapacity(1))
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then dequeue stops yielding", func() {
			q.Enqueue(context.Background(), submission("a"))
			out := q.Dequeue(cancelled)
			terminated := false
			select {
			case _, open := <-out:
				// Either the buffered item slipped through before the
				// cancellation was observed, or the channel closed.
				if open {
					So(q.Close(), ShouldBeNil)
					_, open = <-out
					So(open, ShouldBeFalse)
				}
				terminated = true
			case <-time.After(time.Second):
			}
			So(terminated, ShouldBeTrue)
		})
	})
}

func TestQueueThroughput(t *testing.T) {
	ctx := context.Background()

	Convey("Given a producer and a consumer", t, func() {
		q := NewInMemoryQueue(WithCapacity(1000))
		const total = 500

		done := make(chan int)
		go func() {
			var count int
			for range q.Dequeue(ctx) {
				count++
			}
			done <- count
		}()

		for i := 0; i < total; i++ {
			So(q.Enqueue(ctx, submission(fmt.Sprintf("sub-%d", i))), ShouldBeTrue)
		}
		So(q.Close(), ShouldBeNil)

		Convey("Then every submission is delivered exactly once", func() {
			select {
			case count := <-done:
				So(count, ShouldEqual, total)
			case <-time.After(5 * time.Second):
				So("consumer did not finish", ShouldBeEmpty)
			}
		})
	})
}
