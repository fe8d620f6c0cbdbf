package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/verity/internal/logic"
)

// testOwner is a minimal Notifier that records every delivery.
type testOwner struct {
	prefix string
	listen map[string]bool
	got    []note
}

type note struct {
	Name  string
	Value logic.Truth
}

func newOwner(prefix string, listen ...string) *testOwner {
	o := &testOwner{prefix: prefix, listen: make(map[string]bool)}
	for _, token := range listen {
		o.listen[logic.QualifiedName(prefix, token)] = true
	}
	return o
}

func (o *testOwner) Prefix() string                       { return o.prefix }
func (o *testOwner) HasCallback(name string) bool         { return o.listen[name] }
func (o *testOwner) Notify(name string, value logic.Truth) { o.got = append(o.got, note{name, value}) }

// eventLog records listener events.
type eventLog struct {
	events []Event
}

func (l *eventLog) OnEvent(ev Event) { l.events = append(l.events, ev) }

func (l *eventLog) kinds() []EventKind {
	out := make([]EventKind, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Kind
	}
	return out
}

func (l *eventLog) count(kind EventKind) int {
	n := 0
	for _, ev := range l.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithLogger(discardLogger()),
		WithSessionIDs(NewFixedGenerator("session-1")),
	}
	return New(append(base, opts...)...)
}

// atoms registers owner and one atom per token, returning the atoms in order.
func atoms(t *testing.T, e *Engine, owner logic.Owner, tokens ...string) []*logic.Atom {
	t.Helper()
	if _, ok := e.Entity(owner.Prefix()); !ok {
		require.NoError(t, e.RegisterEntity(owner))
	}
	out := make([]*logic.Atom, len(tokens))
	for i, token := range tokens {
		out[i] = logic.NewAtom(owner, token)
		require.NoError(t, e.RegisterAtom(out[i]))
	}
	return out
}

func report(t *testing.T, e *Engine, name string, value bool) Report {
	t.Helper()
	r, err := e.ReportFact(name, value)
	require.NoError(t, err)
	return r
}

func register(t *testing.T, e *Engine, f logic.Formula) string {
	t.Helper()
	id, err := e.RegisterFormula(f)
	require.NoError(t, err)
	return id
}
