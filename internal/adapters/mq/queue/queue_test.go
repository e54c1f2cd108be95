package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/vityaz/arena/internal/adapters/mq/queue"
	"github.com/vityaz/arena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func envelope(id string) queue.Event {
	return queue.Event{
		EventID:  id,
		Kind:     model.KindDisconnect,
		PlayerID: "p1",
	}
}

func TestQueue(t *testing.T) {
	Convey("Given an in-memory queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("Enqueued events come back out in order", func() {
			So(q.Enqueue(ctx, envelope("e1")), ShouldBeTrue)
			So(q.Enqueue(ctx, envelope("e2")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			out := q.Dequeue(ctx)
			first := <-out
			second := <-out
			So(first.EventID, ShouldEqual, "e1")
			So(second.EventID, ShouldEqual, "e2")
		})

		Convey("A full queue rejects without blocking", func() {
			So(q.Enqueue(ctx, envelope("e1")), ShouldBeTrue)
			So(q.Enqueue(ctx, envelope("e2")), ShouldBeTrue)
			So(q.Enqueue(ctx, envelope("e3")), ShouldBeFalse)
		})

		Convey("A closed queue rejects enqueues", func() {
			So(q.Close(), ShouldBeNil)
			So(q.IsClosed(), ShouldBeTrue)
			So(q.Enqueue(ctx, envelope("e1")), ShouldBeFalse)

			Convey("And closing twice is safe", func() {
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("Closing drains remaining events then closes the channel", func() {
			So(q.Enqueue(ctx, envelope("e1")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			out := q.Dequeue(ctx)
			evt, ok := <-out
			So(ok, ShouldBeTrue)
			So(evt.EventID, ShouldEqual, "e1")

			select {
			case _, ok := <-out:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				So("dequeue channel never closed", ShouldBeEmpty)
			}
		})
	})
}
