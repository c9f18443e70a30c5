package operator

import (
	"sync"

	"github.com/roach88/nysm/internal/ir"
)

// Queue is a thread-safe FIFO of rows awaiting a single downstream
// operator, registered in the scheduler's active-queue set and drained
// by its main loop. capacity is nominal, not enforced by blocking:
// spec.md §5 is explicit that a bounded per-operator queue creates
// backpressure "not by blocking but by provoking ElementComplete
// starvation" — the scheduler's own step budget is what throttles a
// producer, never a blocked Enqueue call. Operator-to-operator queues
// are filled (via Emit) and drained (via TryDequeue) on the single
// scheduler goroutine, so a literal blocking Enqueue (as the teacher's
// eventQueue uses across real OS threads) would deadlock that goroutine
// against itself here; inbound source queues are also filled from
// ingestion callers' goroutines, which the mutex covers. Over() reports
// when a queue has grown past its nominal capacity; the scheduler does
// not currently consult it.
type Queue struct {
	mu         sync.Mutex
	downstream Operator
	events     []ir.Row
	capacity   int
	closed     bool
	signal     chan struct{}
}

// NewQueue creates an empty queue of the given nominal capacity feeding
// downstream.
func NewQueue(downstream Operator, capacity int) *Queue {
	return &Queue{
		downstream: downstream,
		capacity:   capacity,
		signal:     make(chan struct{}, 1),
	}
}

// Downstream returns the operator this queue feeds.
func (q *Queue) Downstream() Operator { return q.downstream }

// Enqueue appends a row without blocking. Enqueue is a no-op after
// Close.
func (q *Queue) Enqueue(row ir.Row) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.events = append(q.events, row)
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Over reports whether the queue currently holds more rows than its
// nominal capacity.
func (q *Queue) Over() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) > q.capacity
}

// TryDequeue removes and returns the front row without blocking.
func (q *Queue) TryDequeue() (ir.Row, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return ir.Row{}, false
	}
	row := q.events[0]
	q.events[0] = ir.Row{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return row, true
}

// Len returns the current queue length.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close marks the queue closed; further Enqueue calls are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
