package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vityaz/arena/internal/adapters/mq/queue"
	"github.com/vityaz/arena/internal/adapters/mq/worker"
	"github.com/vityaz/arena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// recordingDispatcher collects dispatched events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []worker.Event
	fail   bool
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, e worker.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	if d.fail {
		return errors.New("dispatch failed")
	}
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

func TestWorker(t *testing.T) {
	Convey("Given a worker draining a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		d := &recordingDispatcher{}
		w := worker.NewInMemoryWorker(q, d, worker.WithName("worker-1"))

		go w.Run(ctx)

		Convey("Enqueued events reach the dispatcher", func() {
			for _, id := range []string{"e1", "e2", "e3"} {
				So(q.Enqueue(ctx, worker.Event{EventID: id, Kind: model.KindDisconnect, PlayerID: "p1"}), ShouldBeTrue)
			}

			deadline := time.Now().Add(2 * time.Second)
			for d.count() < 3 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(d.count(), ShouldEqual, 3)
		})

		Convey("A dispatch error does not stop the loop", func() {
			d.fail = true
			So(q.Enqueue(ctx, worker.Event{EventID: "bad", Kind: model.KindDisconnect, PlayerID: "p1"}), ShouldBeTrue)
			So(q.Enqueue(ctx, worker.Event{EventID: "next", Kind: model.KindDisconnect, PlayerID: "p1"}), ShouldBeTrue)

			deadline := time.Now().Add(2 * time.Second)
			for d.count() < 2 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			So(d.count(), ShouldEqual, 2)
		})

		Convey("Shutdown stops the worker promptly", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()
			So(w.Shutdown(shutdownCtx), ShouldBeNil)
		})
	})
}
