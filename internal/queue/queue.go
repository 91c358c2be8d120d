// Package queue provides the bounded in-process FIFO that hands accepted
// events to the background processor. Durability comes from the event store,
// not the queue; production deployments layer a broker underneath.
package queue

import (
	"context"
	"sync"

	"github.com/osmith/BadgeForge_Go/internal/domain"
)

// Queue is a bounded FIFO of accepted events. Enqueue blocks when the queue
// is at capacity; Dequeue blocks until an event arrives or the context fires.
type Queue struct {
	ch     chan domain.Event
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// New creates a queue holding up to capacity events.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		ch:   make(chan domain.Event, capacity),
		done: make(chan struct{}),
	}
}

// Enqueue appends the event, blocking while the queue is full. It fails with
// domain.ErrInvalidInput for an invalid event, domain.ErrQueueClosed after
// Close, and the context error when ctx fires first.
func (q *Queue) Enqueue(ctx context.Context, event domain.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrQueueClosed
	}
	q.mu.Unlock()

	// The buffer channel is never closed, so a producer parked here while
	// Close runs unblocks through the done channel instead of panicking.
	select {
	case q.ch <- event:
		return nil
	case <-q.done:
		return domain.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryEnqueue appends without blocking, failing with domain.ErrQueueFull when
// at capacity.
func (q *Queue) TryEnqueue(event domain.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrQueueClosed
	}
	q.mu.Unlock()

	select {
	case q.ch <- event:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue returns the oldest enqueued event, blocking until one is available.
// It returns false when the context fires or the queue is closed and drained.
func (q *Queue) Dequeue(ctx context.Context) (domain.Event, bool) {
	select {
	case event := <-q.ch:
		return event, true
	case <-ctx.Done():
		return domain.Event{}, false
	case <-q.done:
		// Events buffered before Close stay dequeueable.
		select {
		case event := <-q.ch:
			return event, true
		default:
			return domain.Event{}, false
		}
	}
}

// Size returns the number of buffered events.
func (q *Queue) Size() int {
	return len(q.ch)
}

// Empty reports whether no events are buffered.
func (q *Queue) Empty() bool {
	return len(q.ch) == 0
}

// Close stops accepting events. Buffered events remain dequeueable until the
// queue drains. Producers blocked in Enqueue return domain.ErrQueueClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}
