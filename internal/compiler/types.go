package compiler

import "strings"

// WorldSpec is the compiled form of a world definition: the entities, the
// rules and tracked formulas relating their attributes, the goals that win
// the game and the facts known at the start.
//
// Every list is in the field order CUE reports, so two compilations of the
// same source are identical.
type WorldSpec struct {
	Name     string        `json:"name,omitempty"`
	Entities []EntitySpec  `json:"entities"`
	Rules    []RuleSpec    `json:"rules"`
	Formulas []FormulaSpec `json:"formulas"`
	Goals    []GoalSpec    `json:"goals"`
	Initial  []InitialFact `json:"initial"`
}

// EntitySpec declares an entity prefix and its attribute tokens.
type EntitySpec struct {
	Prefix     string   `json:"prefix"`
	Attributes []string `json:"attributes"`
	Line       int      `json:"line,omitempty"`
}

// RuleSpec is a two-sided implication If ⇒ Then.
// A nil If always holds; a nil Then infers nothing.
// Owner and Name label the rule so its own truth value can be tracked.
type RuleSpec struct {
	ID    string `json:"id"`
	If    *Expr  `json:"if,omitempty"`
	Then  *Expr  `json:"then,omitempty"`
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// QualifiedName returns Owner.Name, or "" for an unlabelled rule.
func (r RuleSpec) QualifiedName() string {
	if r.Owner == "" || r.Name == "" {
		return ""
	}
	return r.Owner + "." + r.Name
}

// FormulaSpec is a tracked formula: its value is stored under Owner.Name.
type FormulaSpec struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Expr  *Expr  `json:"expr"`
	Line  int    `json:"line,omitempty"`
}

// QualifiedName returns Owner.Name.
func (f FormulaSpec) QualifiedName() string {
	return f.Owner + "." + f.Name
}

// GoalSpec is one desired attribute value.
type GoalSpec struct {
	Prefix  string `json:"prefix"`
	Token   string `json:"token"`
	Desired bool   `json:"desired"`
}

// Name returns the qualified name of the goal's attribute.
func (g GoalSpec) Name() string {
	return g.Prefix + "." + g.Token
}

// InitialFact is a value seeded before play begins.
type InitialFact struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

// ExprKind identifies the shape of an Expr.
type ExprKind string

const (
	ExprAtom ExprKind = "atom"
	ExprNot  ExprKind = "not"
	ExprAll  ExprKind = "all"
	ExprAny  ExprKind = "any"
)

// Expr is a propositional expression over qualified names.
//
// In CUE an expression is a string (an atom), {not: e}, {all: [e...]} or
// {any: [e...]}.
type Expr struct {
	Kind     ExprKind `json:"kind"`
	Atom     string   `json:"atom,omitempty"`
	Operands []*Expr  `json:"operands,omitempty"`
	Line     int      `json:"line,omitempty"`
}

// A returns an atom expression.
func A(name string) *Expr { return &Expr{Kind: ExprAtom, Atom: name} }

// NotE returns the negation of e.
func NotE(e *Expr) *Expr { return &Expr{Kind: ExprNot, Operands: []*Expr{e}} }

// AllE returns the conjunction of es.
func AllE(es ...*Expr) *Expr { return &Expr{Kind: ExprAll, Operands: es} }

// AnyE returns the disjunction of es.
func AnyE(es ...*Expr) *Expr { return &Expr{Kind: ExprAny, Operands: es} }

func (e *Expr) String() string {
	if e == nil {
		return "true"
	}
	switch e.Kind {
	case ExprAtom:
		return e.Atom
	case ExprNot:
		return "!" + e.Operands[0].String()
	case ExprAll:
		return join(e.Operands, " & ", "true")
	case ExprAny:
		return join(e.Operands, " | ", "false")
	}
	return "?"
}

func join(ops []*Expr, sep, empty string) string {
	if len(ops) == 0 {
		return empty
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Atoms returns the names referenced by e in first-occurrence order.
func (e *Expr) Atoms() []string {
	var names []string
	seen := make(map[string]bool)
	e.walk(func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names
}

func (e *Expr) walk(visit func(string)) {
	if e == nil {
		return
	}
	if e.Kind == ExprAtom {
		visit(e.Atom)
		return
	}
	for _, op := range e.Operands {
		op.walk(visit)
	}
}
