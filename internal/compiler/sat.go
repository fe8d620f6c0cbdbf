package compiler

import (
	"fmt"

	"github.com/go-air/gini"
	glogic "github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// GoalCheck is the result of CheckGoals.
type GoalCheck struct {
	Satisfiable bool `json:"satisfiable"`
	// Witness is one assignment of every name satisfying the rules, the
	// tracked formulas and the goals. Nil when unsatisfiable.
	Witness map[string]bool `json:"witness,omitempty"`
}

// CheckGoals asks a SAT solver whether the world's goals can hold together
// with its rules and tracked formulas.
//
// Rules are encoded as material implications (a nil if is a unit clause,
// a nil then is no constraint), tracked formulas and labelled rules as
// equivalences with their name. The check is two-valued: a world that
// fails it can never be won, one that passes may still need the right
// facts reported.
//
// A world without goals is trivially satisfiable.
func CheckGoals(spec *WorldSpec) (*GoalCheck, error) {
	if spec == nil {
		return nil, fmt.Errorf("check goals: world is nil")
	}

	enc := newSATEncoder()
	var constraints []z.Lit

	for _, r := range spec.Rules {
		if r.Then == nil {
			continue
		}
		then, err := enc.expr(r.Then)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		cond := enc.c.T
		if r.If != nil {
			if cond, err = enc.expr(r.If); err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.ID, err)
			}
		}
		impl := enc.c.Implies(cond, then)
		constraints = append(constraints, impl)
		if q := r.QualifiedName(); q != "" {
			constraints = append(constraints, enc.iff(enc.lit(q), impl))
		}
	}
	for _, f := range spec.Formulas {
		body, err := enc.expr(f.Expr)
		if err != nil {
			return nil, fmt.Errorf("formula %s: %w", f.ID, err)
		}
		constraints = append(constraints, enc.iff(enc.lit(f.QualifiedName()), body))
	}
	for _, g := range spec.Goals {
		m := enc.lit(g.Name())
		if !g.Desired {
			m = m.Not()
		}
		constraints = append(constraints, m)
	}

	g := gini.New()
	enc.c.ToCnf(g)
	g.Assume(constraints...)
	if g.Solve() != 1 {
		return &GoalCheck{Satisfiable: false}, nil
	}

	witness := make(map[string]bool, len(enc.order))
	for _, name := range enc.order {
		// Inputs simplified out of the circuit never reach the solver.
		m := enc.vars[name]
		witness[name] = m.Var() <= g.MaxVar() && g.Value(m)
	}
	return &GoalCheck{Satisfiable: true, Witness: witness}, nil
}

// satEncoder maps names to circuit inputs.
type satEncoder struct {
	c     *glogic.C
	vars  map[string]z.Lit
	order []string
}

func newSATEncoder() *satEncoder {
	return &satEncoder{c: glogic.NewC(), vars: make(map[string]z.Lit)}
}

func (s *satEncoder) lit(name string) z.Lit {
	if m, ok := s.vars[name]; ok {
		return m
	}
	m := s.c.Lit()
	s.vars[name] = m
	s.order = append(s.order, name)
	return m
}

func (s *satEncoder) iff(a, b z.Lit) z.Lit {
	return s.c.Xor(a, b).Not()
}

func (s *satEncoder) expr(e *Expr) (z.Lit, error) {
	switch e.Kind {
	case ExprAtom:
		return s.lit(e.Atom), nil
	case ExprNot:
		if len(e.Operands) != 1 {
			return z.LitNull, fmt.Errorf("not takes one operand, got %d", len(e.Operands))
		}
		m, err := s.expr(e.Operands[0])
		return m.Not(), err
	case ExprAll, ExprAny:
		ms := make([]z.Lit, 0, len(e.Operands))
		for _, op := range e.Operands {
			m, err := s.expr(op)
			if err != nil {
				return z.LitNull, err
			}
			ms = append(ms, m)
		}
		if e.Kind == ExprAll {
			return s.c.Ands(ms...), nil
		}
		return s.c.Ors(ms...), nil
	}
	return z.LitNull, fmt.Errorf("unknown expression kind %q", e.Kind)
}

// UnwinnableError converts a failed goal check into a validation error.
func UnwinnableError(spec *WorldSpec) ValidationError {
	goals := make([]string, len(spec.Goals))
	for i, g := range spec.Goals {
		goals[i] = fmt.Sprintf("%s=%t", g.Name(), g.Desired)
	}
	return ValidationError{
		Field:   "goal",
		Message: fmt.Sprintf("game can never be won: goals %v contradict the rules", goals),
		Code:    ErrUnwinnable,
	}
}
