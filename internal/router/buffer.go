package router

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by Next once the queue is closed and drained.
var ErrQueueClosed = errors.New("event queue closed")

// EventQueue is an unbounded FIFO of classified events. Push never blocks
// and never drops: the ring doubles when full. Safe for one producer and
// any number of consumers.
type EventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []Event
	head   int // next read
	tail   int // next write
	count  int
	closed bool

	pushed    int64
	popped    int64
	grows     int
	highWater int
}

// QueueStats is a point-in-time snapshot of an EventQueue.
type QueueStats struct {
	Len       int
	Capacity  int
	Pushed    int64
	Popped    int64
	Grows     int
	HighWater int
}

// NewEventQueue creates a queue with the given initial capacity (minimum 1).
func NewEventQueue(initialCapacity int) *EventQueue {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	q := &EventQueue{ring: make([]Event, initialCapacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends ev. Returns false if the queue is closed.
func (q *EventQueue) Push(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if q.count == len(q.ring) {
		q.grow()
	}

	q.ring[q.tail] = ev
	q.tail = (q.tail + 1) % len(q.ring)
	q.count++
	q.pushed++
	if q.count > q.highWater {
		q.highWater = q.count
	}

	q.cond.Signal()
	return true
}

// Next blocks until an event is available, the queue is closed and empty
// (ErrQueueClosed), or ctx is done (ctx.Err()).
func (q *EventQueue) Next(ctx context.Context) (Event, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed && ctx.Err() == nil {
		q.cond.Wait()
	}

	if q.count > 0 {
		return q.pop(), nil
	}
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, ErrQueueClosed
}

// TryNext returns the oldest event without blocking.
func (q *EventQueue) TryNext() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return Event{}, false
	}
	return q.pop(), true
}

// Drain removes up to max events (all if max <= 0) in order.
func (q *EventQueue) Drain(max int) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.count
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]Event, n)
	for i := range out {
		out[i] = q.pop()
	}
	return out
}

// Close stops further pushes and wakes all waiting consumers. Queued events
// remain readable. Idempotent.
func (q *EventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Stats returns queue statistics.
func (q *EventQueue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:       q.count,
		Capacity:  len(q.ring),
		Pushed:    q.pushed,
		Popped:    q.popped,
		Grows:     q.grows,
		HighWater: q.highWater,
	}
}

// pop must be called with the lock held and count > 0.
func (q *EventQueue) pop() Event {
	ev := q.ring[q.head]
	q.ring[q.head] = Event{}
	q.head = (q.head + 1) % len(q.ring)
	q.count--
	q.popped++
	return ev
}

// grow doubles the ring, unwrapping it so head is at 0. Lock held.
func (q *EventQueue) grow() {
	next := make([]Event, len(q.ring)*2)
	n := copy(next, q.ring[q.head:])
	copy(next[n:], q.ring[:q.head])

	q.ring = next
	q.head = 0
	q.tail = q.count
	q.grows++
}
