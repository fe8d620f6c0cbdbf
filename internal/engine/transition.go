package engine

import (
	"fmt"

	"github.com/roach88/verity/internal/graph"
	"github.com/roach88/verity/internal/logic"
)

// Report describes what one ReportFact call did.
type Report struct {
	Name  string
	Value bool

	// Introduced is set when the fact was unknown and was set directly.
	Introduced bool
	// Changed is set when the fact had a different known value.
	Changed bool
	// NodeCreated is set when the reported change synthesised a new node.
	NodeCreated bool

	// From and To are the current node ids before and after the call.
	From int
	To   int

	// Transitions counts every graph transition, including derived ones.
	Transitions int
	// Sweeps counts propagation sweeps (always 1 unless fixpoint mode).
	Sweeps int

	// Satisfied reports whether all goals hold after the call.
	Satisfied bool
	// Won is set on the call that first satisfied the goals.
	Won bool
}

// ReportFact applies an external fact change and runs propagation.
//
//  1. An unknown name is set directly on the current node (introducing a
//     fact is not a change).
//  2. An unchanged value is a no-op for the graph.
//  3. A changed value moves current to another node (see transition).
//  4. Propagation runs unconditionally.
//  5. If a node was created and the fact occurs in a rule, a cue is emitted.
//
// The only errors are *QuotaError and *OscillationError. State reached before
// the error is kept and goals are still evaluated.
func (e *Engine) ReportFact(name string, value bool) (Report, error) {
	v := logic.FromBool(value)
	r := Report{Name: name, Value: value, From: e.current.ID()}

	e.quota.Reset()
	e.emit(Event{Kind: EventFactReported, Name: name, Value: v, From: r.From, To: -1})

	old, known := e.current.Value.Get(name)
	switch {
	case !known:
		e.current.Value.Set(name, v)
		r.Introduced = true
	case old != v:
		created, err := e.transition(name, v)
		r.Changed = true
		r.NodeCreated = created
		if err != nil {
			return e.fail(r, err)
		}
	}

	sweeps, err := e.propagate(name)
	r.Sweeps = sweeps
	if err != nil {
		return e.fail(r, err)
	}

	if r.NodeCreated {
		e.cueRules(name, v)
	}

	r = e.finish(r)
	r.Satisfied, r.Won = e.evaluateGoals()
	return r, nil
}

// fail ends a report cut short by err. The state reached is kept, so goals
// are evaluated on it as on any other report.
func (e *Engine) fail(r Report, err error) (Report, error) {
	r = e.finish(r)
	r.Satisfied, r.Won = e.evaluateGoals()
	return r, fmt.Errorf("report %s=%t: %w", r.Name, r.Value, err)
}

func (e *Engine) finish(r Report) Report {
	r.To = e.current.ID()
	r.Transitions = e.quota.Current()
	return r
}

// ForceSet writes value into the current world-state without inference,
// transitions or notifications. It seeds values when restoring a prior
// state before play resumes.
func (e *Engine) ForceSet(name string, value bool) {
	e.current.Value.Set(name, logic.FromBool(value))
	e.logger.Debug("fact forced", "name", name, "value", value, "node", e.current.ID())
}

// transition moves current to a node where name has value v.
//
// Candidates are the nodes other than current that have no opinion on name
// or already agree with v. The candidate scoring highest on
// CompareTo(current) wins, provided the score is positive; ties go to the
// earliest inserted node. Without a candidate, current's assignment is cloned
// with name overwritten and inserted (reusing an equal node if one exists).
//
// A chosen node that had no opinion on name gets it set in place.
func (e *Engine) transition(name string, v logic.Truth) (created bool, err error) {
	if err := e.quota.Check(name); err != nil {
		return false, err
	}

	from := e.current
	target := e.bestCandidate(name, v)
	if target == nil {
		next := from.Value.Clone()
		next.Set(name, v)
		target, created = e.states.Insert(next)
		if created {
			e.logger.Debug("node created", "node", target.ID(), "state", next.String())
			e.emit(Event{
				Kind:  EventNodeCreated,
				Name:  name,
				Value: v,
				From:  from.ID(),
				To:    target.ID(),
				State: next.Snapshot(),
			})
		}
	} else if _, ok := target.Value.Get(name); !ok {
		target.Value.Set(name, v)
	}

	e.states.AddEdge(from, target)
	e.current = target

	e.logger.Debug("transition",
		"name", name,
		"value", v.String(),
		"from", from.ID(),
		"to", target.ID(),
		"created", created,
	)
	e.emit(Event{
		Kind:    EventTransition,
		Name:    name,
		Value:   v,
		From:    from.ID(),
		To:      target.ID(),
		Created: created,
	})
	return created, nil
}

func (e *Engine) bestCandidate(name string, v logic.Truth) *graph.Node[*logic.Assignment] {
	var best *graph.Node[*logic.Assignment]
	bestScore := 0
	e.states.Each(func(n *graph.Node[*logic.Assignment]) bool {
		if n == e.current {
			return true
		}
		if have, ok := n.Value.Get(name); ok && have != v {
			return true
		}
		// Strictly greater keeps the earliest node on ties.
		if score := n.Value.CompareTo(e.current.Value); score > bestScore {
			best, bestScore = n, score
		}
		return true
	})
	return best
}

// cueRules emits an observational cue for every rule mentioning name.
func (e *Engine) cueRules(name string, v logic.Truth) {
	for _, id := range e.rules {
		if logic.Contains(e.formulas[id], name) {
			e.logger.Debug("rule cue", "rule", id, "name", name)
			e.emit(Event{Kind: EventRuleCue, Name: name, Value: v, Rule: id, From: -1, To: e.current.ID()})
		}
	}
}
