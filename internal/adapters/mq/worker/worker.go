// Package worker drains the event queue and hands each event to the core
// dispatcher.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/vityaz/arena/internal/domain/model"
	"github.com/vityaz/arena/pkg/logger"
	"github.com/vityaz/arena/pkg/metrics"
)

// Event is what workers read off the queue.
type Event = model.Envelope

// Dispatcher routes one validated event to the owning core component.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker over a queue and dispatcher.
type InMemoryWorker struct {
	queue      Queue
	dispatcher Dispatcher
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, dispatcher Dispatcher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      queue,
		dispatcher: dispatcher,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			w.process(ctx, event)
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, event Event) {
	start := time.Now()
	err := w.dispatcher.Dispatch(ctx, event)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000.0)

	if err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "event dispatch failed",
			logger.String("event_id", event.EventID),
			logger.String("kind", string(event.Kind)),
			logger.Error(err))
		return
	}
	metrics.RecordEventProcessed()
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
