package engine

import (
	"github.com/roach88/verity/internal/logic"
)

// GoalChange is the effect of one RegisterGoal call.
type GoalChange int

const (
	// GoalAdded means the desired value was recorded.
	GoalAdded GoalChange = iota + 1
	// GoalUnchanged means the same value was already recorded.
	GoalUnchanged
	// GoalRetracted means a conflicting value cancelled the existing one.
	GoalRetracted
)

func (c GoalChange) String() string {
	switch c {
	case GoalAdded:
		return "added"
	case GoalUnchanged:
		return "unchanged"
	case GoalRetracted:
		return "retracted"
	default:
		return "invalid"
	}
}

// RegisterGoal records that prefix's attribute token should have value
// desired for the session to be won.
//
// Goals accumulate per prefix. Declaring the opposite value for a name that
// already has a goal retracts it; a prefix left without goals is dropped.
func (e *Engine) RegisterGoal(prefix, token string, desired bool) GoalChange {
	name := logic.QualifiedName(prefix, token)
	want := logic.FromBool(desired)

	goal, ok := e.goals[prefix]
	if !ok {
		goal = logic.NewAssignment()
		e.goals[prefix] = goal
		e.goalOrder = append(e.goalOrder, prefix)
	}
	delete(e.goalFormulas, prefix)

	change := GoalAdded
	switch have, known := goal.Get(name); {
	case !known:
		goal.Set(name, want)
	case have == want:
		change = GoalUnchanged
	default:
		goal.Remove(name)
		change = GoalRetracted
	}

	if goal.IsEmpty() {
		e.dropGoal(prefix)
	}

	e.logger.Debug("goal registered",
		"prefix", prefix,
		"name", name,
		"desired", desired,
		"change", change.String(),
	)
	return change
}

func (e *Engine) dropGoal(prefix string) {
	delete(e.goals, prefix)
	delete(e.goalFormulas, prefix)
	for i, p := range e.goalOrder {
		if p == prefix {
			e.goalOrder = append(e.goalOrder[:i], e.goalOrder[i+1:]...)
			return
		}
	}
}

// Goals returns a copy of the goal assignment for every prefix that has one.
func (e *Engine) Goals() map[string]*logic.Assignment {
	out := make(map[string]*logic.Assignment, len(e.goals))
	for p, g := range e.goals {
		out[p] = g.Clone()
	}
	return out
}

// GoalPrefixes returns the prefixes with goals in declaration order.
func (e *Engine) GoalPrefixes() []string {
	return append([]string(nil), e.goalOrder...)
}

// GoalsSatisfied reports whether every goal holds in the current world-state.
// A session without goals is never satisfied.
func (e *Engine) GoalsSatisfied() bool {
	if len(e.goalOrder) == 0 {
		return false
	}
	e.interp.SetAssignment(e.current.Value)
	for _, prefix := range e.goalOrder {
		if !e.interp.Evaluate(e.goalFormula(prefix)).IsDesignated() {
			return false
		}
	}
	return true
}

func (e *Engine) goalFormula(prefix string) logic.Formula {
	if f, ok := e.goalFormulas[prefix]; ok {
		return f
	}
	f := e.goals[prefix].ToFormula()
	e.goalFormulas[prefix] = f
	return f
}

// evaluateGoals checks the goals after a report and emits
// EventGoalsSatisfied on the unsatisfied→satisfied edge.
func (e *Engine) evaluateGoals() (satisfied, newlyWon bool) {
	satisfied = e.GoalsSatisfied()
	if satisfied && !e.satisfied {
		newlyWon = !e.won
		e.won = true
		e.logger.Info("goals satisfied", "session", e.session, "node", e.current.ID())
		e.emit(Event{Kind: EventGoalsSatisfied, From: -1, To: e.current.ID()})
	}
	e.satisfied = satisfied
	return satisfied, newlyWon
}
