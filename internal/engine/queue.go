package engine

import "sync"

// Fact is one external fact report waiting to be applied.
type Fact struct {
	Name  string
	Value bool
}

// factQueue is a thread-safe FIFO queue of fact reports.
//
// The queue is unbounded so that game objects never block while reporting.
// A buffered signal channel lets the consumer wait with select alongside
// context cancellation.
type factQueue struct {
	mu     sync.Mutex
	facts  []Fact
	closed bool
	signal chan struct{} // Signals availability (buffered, size 1)
}

func newFactQueue() *factQueue {
	return &factQueue{
		facts:  make([]Fact, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a fact to the back of the queue.
// Returns false if the queue is closed.
func (q *factQueue) Enqueue(f Fact) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.facts = append(q.facts, f)

	// Non-blocking: the buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front fact without blocking.
// Returns (Fact{}, false) if the queue is empty.
func (q *factQueue) TryDequeue() (Fact, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.facts) == 0 {
		return Fact{}, false
	}

	f := q.facts[0]
	if len(q.facts) == 1 {
		q.facts = q.facts[:0]
	} else {
		q.facts = q.facts[1:]
	}
	return f, true
}

// Wait returns a channel that signals when facts may be available.
// The channel is closed when the queue is closed.
func (q *factQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *factQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.facts)
}

// Close signals that no more facts will be enqueued and wakes the consumer.
func (q *factQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
