package engine

import (
	"fmt"

	"github.com/roach88/verity/internal/logic"
)

// Replay
//
// An engine is deterministic: the same registrations followed by the same
// fact reports produce the same graph, the same node ids and the same
// current state. Nothing depends on wall-clock time or map iteration order;
// every registry and assignment iterates in insertion order.
//
// A journal therefore only needs the reported facts of a session to rebuild
// it. Replay applies them to a freshly built engine; comparing Fingerprint
// with the journalled final state verifies the trace.

// Replay applies facts to e in order and returns one report per fact.
// It stops at the first error, returning the reports so far.
func Replay(e *Engine, facts []Fact) ([]Report, error) {
	reports := make([]Report, 0, len(facts))
	for i, f := range facts {
		r, err := e.ReportFact(f.Name, f.Value)
		reports = append(reports, r)
		if err != nil {
			return reports, fmt.Errorf("replay fact %d: %w", i+1, err)
		}
	}
	return reports, nil
}

// Fingerprint returns the content hash of the current world-state.
func (e *Engine) Fingerprint() string {
	return logic.MustFingerprint(e.current.Value)
}
