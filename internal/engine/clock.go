package engine

import "sync/atomic"

// Clock is a monotonic logical clock for event ordering.
//
// Every listener event is stamped with a strictly increasing seq number, so a
// journal written from one session replays in the same order it was produced.
// Anonymous formula ids are drawn from a second clock.
//
// Clock is safe for concurrent use, though the engine only calls it from the
// goroutine that owns the session.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
