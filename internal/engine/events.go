package engine

import "github.com/roach88/verity/internal/logic"

// EventKind distinguishes listener events.
type EventKind string

const (
	// EventFactReported is emitted once at the start of every ReportFact call.
	EventFactReported EventKind = "fact_reported"

	// EventNodeCreated is emitted when a world-state node is added to the graph.
	EventNodeCreated EventKind = "node_created"

	// EventTransition is emitted when the current node moves along an edge.
	EventTransition EventKind = "transition"

	// EventRuleCue is emitted when a report created a new node and the
	// reported fact occurs in a registered rule. Purely observational.
	EventRuleCue EventKind = "rule_cue"

	// EventNotified is emitted for every owner callback delivery.
	EventNotified EventKind = "notified"

	// EventGoalsSatisfied is emitted once when the goals go from unsatisfied
	// to satisfied.
	EventGoalsSatisfied EventKind = "goals_satisfied"
)

// Event is one observation of engine activity.
//
// Only the fields relevant to Kind are set. Node ids are graph insertion
// indices; -1 means not applicable.
type Event struct {
	Seq     int64
	Session string
	Kind    EventKind

	// Name is the fact or formula concerned.
	Name  string
	Value logic.Truth

	// From and To are node ids for transitions; To alone for node creation.
	From int
	To   int

	// Created is set on transitions that synthesised their target node.
	Created bool

	// Rule is the rule id for EventRuleCue.
	Rule string

	// State is a snapshot of the node for EventNodeCreated.
	State map[string]bool
}

// Listener observes engine activity. Listeners run synchronously inside the
// engine call that produced the event and must not call back into the engine.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnEvent calls f(ev).
func (f ListenerFunc) OnEvent(ev Event) { f(ev) }

// Notifier is implemented by owners that want resolved fact values delivered
// back to them.
type Notifier interface {
	logic.Owner

	// HasCallback reports whether the owner wants values for name.
	HasCallback(name string) bool

	// Notify delivers the resolved value of name.
	Notify(name string, value logic.Truth)
}

func (e *Engine) emit(ev Event) {
	if len(e.listeners) == 0 {
		return
	}
	ev.Seq = e.clock.Next()
	ev.Session = e.session
	for _, l := range e.listeners {
		l.OnEvent(ev)
	}
}
