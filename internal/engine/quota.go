package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxTransitions is the default transition quota per external event.
const DefaultMaxTransitions = 1000

// QuotaEnforcer counts graph transitions caused by one external fact report
// and enforces a maximum.
//
// A single propagation sweep is bounded by the number of known names, but
// fixpoint mode repeats sweeps and a rule set can keep flipping facts. The
// quota guarantees ReportFact returns.
type QuotaEnforcer struct {
	max     int
	current int
}

// NewQuotaEnforcer creates an enforcer with the given limit.
func NewQuotaEnforcer(max int) *QuotaEnforcer {
	return &QuotaEnforcer{max: max}
}

// Check increments the transition counter and validates against the limit.
//
// Returns *QuotaError if the quota is exceeded.
func (q *QuotaEnforcer) Check(fact string) error {
	q.current++
	if q.current > q.max {
		return &QuotaError{
			Fact:        fact,
			Transitions: q.current,
			Limit:       q.max,
		}
	}
	return nil
}

// Reset sets the counter back to 0 at the start of an external event.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the transition count so far.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// Max returns the limit.
func (q *QuotaEnforcer) Max() int {
	return q.max
}

// QuotaError is returned when one external fact report causes more graph
// transitions than the configured limit.
//
// The engine stops propagating at the failed transition. State reached so far
// is kept; nothing is rolled back.
type QuotaError struct {
	Fact        string // The externally reported fact that started the event
	Transitions int    // Transitions attempted, including the rejected one
	Limit       int    // Maximum allowed transitions
}

// Error implements the error interface.
func (e *QuotaError) Error() string {
	return fmt.Sprintf("report %s exceeded transition quota: %d transitions > %d limit",
		e.Fact, e.Transitions, e.Limit)
}

// IsQuotaError returns true if the error is a QuotaError.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}
