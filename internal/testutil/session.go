// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import "github.com/roach88/verity/internal/engine"

// DefaultSession is the session id used when a scenario names none.
const DefaultSession = "test-session-default"

// FixedSessionGenerator returns the same session id every time.
//
// The same scenario run with the same FixedSessionGenerator produces
// byte-identical event logs, which golden comparison depends on. Unlike
// engine.FixedGenerator, which steps through a list, it never advances.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	session string
}

var _ engine.SessionIDGenerator = (*FixedSessionGenerator)(nil)

// NewFixedSessionGenerator creates a generator for session. An empty session
// selects DefaultSession.
func NewFixedSessionGenerator(session string) *FixedSessionGenerator {
	if session == "" {
		session = DefaultSession
	}
	return &FixedSessionGenerator{session: session}
}

// Generate implements engine.SessionIDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.session
}
