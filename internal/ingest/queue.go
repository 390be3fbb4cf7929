// Package ingest implements the background file-ingestion queue.
//
// External actors enqueue file paths at any time; a single dedicated
// consumer goroutine drains the pending list wholesale and dispatches
// each path to an Opener in insertion order. Wake signaling is a
// one-permit channel: redundant wakes collapse, and an enqueue during
// an active drain either joins that drain's swap or triggers the next
// one. No enqueued path is ever lost.
package ingest

import (
	"context"
	"sync"
	"sync/atomic"
)

// State represents the consumer loop's current phase.
type State string

const (
	// StateNotStarted indicates Start has not been called.
	StateNotStarted State = "not-started"

	// StateDraining indicates the consumer is dispatching a batch.
	StateDraining State = "draining"

	// StateWaiting indicates the consumer is idle awaiting a wake.
	StateWaiting State = "waiting"
)

// Opener dispatches one drained path, typically by opening it as the
// active document.
type Opener interface {
	OpenPath(path string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) error

// OpenPath calls f.
func (f OpenerFunc) OpenPath(path string) error { return f(path) }

// Stats reports queue counters.
type Stats struct {
	// Enqueued is the number of accepted Enqueue calls.
	Enqueued uint64

	// Dispatched counts dispatch attempts, failed ones included.
	Dispatched uint64

	// Batches counts non-empty drained batches.
	Batches uint64
}

// Queue is the background ingestion queue. Producers call Enqueue
// from any goroutine; exactly one consumer loop runs for the queue's
// lifetime once Start has been called.
type Queue struct {
	opener  Opener
	onError func(path string, err error)

	mu      sync.Mutex
	pending []string
	state   State

	wake      chan struct{}
	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}

	enqueued   atomic.Uint64
	dispatched atomic.Uint64
	batches    atomic.Uint64
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithErrorHandler sets a callback invoked when dispatching a drained
// path fails. The consumer loop continues regardless.
func WithErrorHandler(fn func(path string, err error)) QueueOption {
	return func(q *Queue) {
		q.onError = fn
	}
}

// NewQueue creates a queue that dispatches drained paths to opener.
func NewQueue(opener Opener, opts ...QueueOption) *Queue {
	q := &Queue{
		opener: opener,
		state:  StateNotStarted,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends path to the pending list and posts a wake permit.
// At most one permit is outstanding; a full permit slot means the
// consumer is already due to wake, so the post is dropped.
func (q *Queue) Enqueue(path string) {
	q.mu.Lock()
	q.pending = append(q.pending, path)
	q.mu.Unlock()
	q.enqueued.Add(1)

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Start launches the consumer loop. Only the first call has any
// effect; the loop begins by draining whatever is already pending,
// then waits for wake permits. It runs until ctx is canceled.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		q.started.Store(true)
		go q.run(ctx)
	})
}

// Started reports whether Start has been called. Unlike State, it
// flips before the consumer loop's first drain, so it is safe to gate
// shutdown waits on.
func (q *Queue) Started() bool {
	return q.started.Load()
}

// State reports the consumer loop's current state.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Pending reports how many paths await the next drain.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stats returns current queue counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued:   q.enqueued.Load(),
		Dispatched: q.dispatched.Load(),
		Batches:    q.batches.Load(),
	}
}

// Done is closed when the consumer loop has exited after its context
// was canceled. It never closes for a queue that was not started.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)

	for {
		q.drain()
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}
	}
}

// drain atomically swaps out the entire pending list and dispatches
// its items sequentially in insertion order.
func (q *Queue) drain() {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.state = StateDraining
	q.mu.Unlock()

	for _, path := range batch {
		q.dispatched.Add(1)
		if err := q.opener.OpenPath(path); err != nil && q.onError != nil {
			q.onError(path, err)
		}
	}
	if len(batch) > 0 {
		q.batches.Add(1)
	}

	q.mu.Lock()
	q.state = StateWaiting
	q.mu.Unlock()
}
