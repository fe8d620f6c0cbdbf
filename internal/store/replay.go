package store

import (
	"context"
	"fmt"

	"github.com/roach88/verity/internal/engine"
)

// Verification is the outcome of replaying a journalled session.
type Verification struct {
	Session  string `json:"session"`
	Facts    int    `json:"facts"`
	Failures int    `json:"failures"` // reports that returned an error during replay
	Expected string `json:"expected"` // journalled final fingerprint
	Actual   string `json:"actual"`   // fingerprint after replay
	Match    bool   `json:"match"`
}

// VerifySession replays a session's reported facts on e and compares the
// resulting world-state with the journalled final state.
//
// e must be freshly built from the same world with the same options, and
// should not journal into j. Failed reports are counted and replay
// continues, as it did when the session was recorded.
func (j *Journal) VerifySession(ctx context.Context, id string, e *engine.Engine) (Verification, error) {
	session, err := j.ReadSession(ctx, id)
	if err != nil {
		return Verification{}, fmt.Errorf("verify session: %w", err)
	}
	if session.FinalFingerprint == "" {
		return Verification{}, fmt.Errorf("verify session %s: session has no recorded end state", id)
	}

	facts, err := j.ReadFacts(ctx, id)
	if err != nil {
		return Verification{}, fmt.Errorf("verify session: %w", err)
	}

	v := Verification{Session: id, Facts: len(facts), Expected: session.FinalFingerprint}
	for _, f := range facts {
		if err := ctx.Err(); err != nil {
			return v, err
		}
		if _, err := e.ReportFact(f.Name, f.Value); err != nil {
			v.Failures++
		}
	}
	v.Actual = e.Fingerprint()
	v.Match = v.Actual == v.Expected
	return v, nil
}
