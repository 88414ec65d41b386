// Package dispatch provides serial callback queues.
//
// A Queue runs submitted functions one at a time, in submission order, on a
// single goroutine. Players deliver every notification through a Queue so
// that notifications for one player are never concurrent or reordered.
package dispatch

import (
	"sync"
)

// Queue is a FIFO of functions executed by one goroutine.
type Queue struct {
	label string

	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

var (
	mainOnce  sync.Once
	mainQueue *Queue
)

// Main returns the process-wide default queue. It is created on first use
// and never closed.
func Main() *Queue {
	mainOnce.Do(func() {
		mainQueue = NewQueue("main")
	})
	return mainQueue
}

// NewQueue starts a new serial queue.
func NewQueue(label string) *Queue {
	q := &Queue{
		label: label,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

// Label returns the name given at creation.
func (q *Queue) Label() string { return q.label }

// Async schedules fn and returns immediately. It reports false if the queue
// is closed, in which case fn never runs.
func (q *Queue) Async(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Sync schedules fn and waits for it to complete. Calling Sync from a
// function running on the same queue deadlocks.
func (q *Queue) Sync(fn func()) bool {
	ran := make(chan struct{})
	if !q.Async(func() {
		defer close(ran)
		fn()
	}) {
		return false
	}
	<-ran
	return true
}

// Flush waits until every function submitted before the call has run.
func (q *Queue) Flush() {
	q.Sync(func() {})
}

// Close stops accepting work. Already submitted functions still run; Close
// returns once the queue goroutine has exited.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

// Done is closed when the queue goroutine exits.
func (q *Queue) Done() <-chan struct{} { return q.done }

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
