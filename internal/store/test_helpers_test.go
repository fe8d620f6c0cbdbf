package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/logic"
)

// createTestJournal creates a new journal in a temporary directory.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

type owner string

func (o owner) Prefix() string { return string(o) }

// newDoorEngine builds a small engine with one rule: Door.IsOpen ⇒ ¬Door.IsLocked.
func newDoorEngine(t *testing.T, session string, opts ...engine.Option) *engine.Engine {
	t.Helper()
	opts = append([]engine.Option{
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithSessionIDs(engine.NewFixedGenerator(session)),
	}, opts...)
	e := engine.New(opts...)

	door := owner("Door")
	if err := e.RegisterEntity(door); err != nil {
		t.Fatalf("RegisterEntity() failed: %v", err)
	}
	open := logic.NewAtom(door, "IsOpen")
	locked := logic.NewAtom(door, "IsLocked")
	for _, a := range []*logic.Atom{open, locked} {
		if err := e.RegisterAtom(a); err != nil {
			t.Fatalf("RegisterAtom() failed: %v", err)
		}
	}
	if _, err := e.RegisterFormula(logic.Implies(open, logic.Not(locked))); err != nil {
		t.Fatalf("RegisterFormula() failed: %v", err)
	}
	e.RegisterGoal("Door", "IsOpen", true)
	return e
}
