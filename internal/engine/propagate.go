package engine

import (
	"github.com/roach88/verity/internal/logic"
)

// propagate runs the propagation sweep once, or until the world-state
// settles in fixpoint mode. Returns the number of sweeps run.
func (e *Engine) propagate(fact string) (int, error) {
	if !e.fixpoint {
		return 1, e.sweep()
	}

	e.oscillation.reset()
	e.oscillation.observe(logic.MustFingerprint(e.current.Value), 0)
	for sweeps := 1; ; sweeps++ {
		if err := e.sweep(); err != nil {
			return sweeps, err
		}
		fp := logic.MustFingerprint(e.current.Value)
		converged, cycled := e.oscillation.observe(fp, sweeps)
		if converged {
			return sweeps, nil
		}
		if cycled {
			e.logger.Warn("propagation oscillates",
				"fact", fact,
				"sweeps", sweeps,
				"states", e.oscillation.size(),
			)
			return sweeps, &OscillationError{Fact: fact, Fingerprint: fp, Sweeps: sweeps}
		}
	}
}

// sweep evaluates every rule and tracked formula once against a working copy
// of the current world-state, then moves current to match it.
//
//  1. Rules, in registration order: forward inference when the antecedent
//     holds and the consequent is unknown; contrapositive drive when the
//     consequent is false and the antecedent unknown. A named rule whose
//     owner listens for it stores its own value.
//  2. Tracked formulas with an owner store their value.
//  3. Every working name is pushed into current, running a transition for
//     each name whose known value differs.
//  4. Owners are notified of every current name they listen for.
//
// The working copy is updated as rules fire, so a rule sees facts derived by
// earlier rules in the same sweep.
func (e *Engine) sweep() error {
	working := e.current.Value.Clone()
	e.interp.SetAssignment(working)

	for _, id := range e.rules {
		rule := e.formulas[id].(*logic.Implication)
		e.applyRule(working, rule)

		if rule.Name() != "" && e.listens(rule.Owner(), rule.Name()) {
			if v := e.interp.Evaluate(rule); v.IsKnown() {
				working.Set(rule.Name(), v)
			}
		}
	}

	for _, id := range e.tracked {
		f := e.formulas[id]
		if f.Owner() == nil {
			continue
		}
		if v := e.interp.Evaluate(f); v.IsKnown() {
			working.Set(f.Name(), v)
		}
	}

	for _, name := range working.Names() {
		wv := working.Value(name)
		cv, ok := e.current.Value.Get(name)
		switch {
		case !ok:
			e.current.Value.Set(name, wv)
			e.logger.Debug("fact derived", "name", name, "value", wv.String(), "node", e.current.ID())
		case cv != wv:
			if _, err := e.transition(name, wv); err != nil {
				return err
			}
		}
	}

	e.notifyOwners()
	return nil
}

// applyRule performs forward inference or the contrapositive drive for one
// rule. A nil antecedent always holds; a nil consequent infers nothing.
func (e *Engine) applyRule(working *logic.Assignment, rule *logic.Implication) {
	if rule.Consequent == nil {
		return
	}

	p := logic.True
	if rule.Antecedent != nil {
		p = e.interp.Evaluate(rule.Antecedent)
	}
	q := e.interp.Evaluate(rule.Consequent)

	switch {
	case p.IsDesignated() && q == logic.Unknown:
		infer(working, rule.Consequent)
	case q == logic.False && p == logic.Unknown:
		drive(working, rule.Antecedent, logic.False)
	}
}

// infer makes an unknown consequent hold: an atom becomes true, a negated
// atom's atom becomes false, a conjunction infers every conjunct. Other
// shapes are not decomposed. Known values are never overwritten.
func infer(working *logic.Assignment, f logic.Formula) {
	switch v := f.(type) {
	case *logic.Atom:
		setUnknown(working, v.Name(), logic.True)
	case *logic.Negation:
		if a, ok := v.Operand.(*logic.Atom); ok {
			setUnknown(working, a.Name(), logic.False)
		}
	case *logic.Conjunction:
		for _, op := range v.Operands {
			infer(working, op)
		}
	}
}

// drive pushes every unknown atom inside f toward want, flipping under
// negation and descending through conjunction and disjunction.
func drive(working *logic.Assignment, f logic.Formula, want logic.Truth) {
	switch v := f.(type) {
	case *logic.Atom:
		setUnknown(working, v.Name(), want)
	case *logic.Negation:
		drive(working, v.Operand, want.Negate())
	case *logic.Conjunction:
		for _, op := range v.Operands {
			drive(working, op, want)
		}
	case *logic.Disjunction:
		for _, op := range v.Operands {
			drive(working, op, want)
		}
	}
}

func setUnknown(working *logic.Assignment, name string, v logic.Truth) {
	if _, ok := working.Get(name); !ok {
		working.Set(name, v)
	}
}

// notifyOwners delivers every current value to the owner of its formula, if
// that owner listens for it.
func (e *Engine) notifyOwners() {
	state := e.current.Value
	for _, name := range state.Names() {
		f, ok := e.formulas[name]
		if !ok {
			continue
		}
		n, ok := f.Owner().(Notifier)
		if !ok || !n.HasCallback(name) {
			continue
		}
		v := state.Value(name)
		n.Notify(name, v)
		e.emit(Event{Kind: EventNotified, Name: name, Value: v, From: -1, To: e.current.ID()})
	}
}

func (e *Engine) listens(owner logic.Owner, name string) bool {
	n, ok := owner.(Notifier)
	return ok && n.HasCallback(name)
}
