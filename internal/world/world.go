// Package world instantiates a compiled world definition on an engine.
package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/verity/internal/compiler"
	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/entity"
	"github.com/roach88/verity/internal/logic"
)

// World is a running instance of a WorldSpec.
type World struct {
	Spec   *compiler.WorldSpec
	Engine *engine.Engine

	entities map[string]*entity.Entity
	order    []string
	// labels are the formula and rule tokens each entity owns.
	labels map[string][]string
}

// Build validates spec, creates an engine with opts and registers every
// entity, rule, tracked formula and goal. Initial facts are seeded with
// ForceSet, so they neither transition nor fire rules.
//
// Unlabelled rules are registered under their id; labelled ones under
// Owner.Name, like tracked formulas.
func Build(spec *compiler.WorldSpec, opts ...engine.Option) (*World, error) {
	if errs := compiler.Validate(spec); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("build world: %w", errors.Join(joined...))
	}

	w := &World{
		Spec:     spec,
		Engine:   engine.New(opts...),
		entities: make(map[string]*entity.Entity),
		labels:   make(map[string][]string),
	}

	for _, es := range spec.Entities {
		ent := entity.New(es.Prefix, es.Attributes...)
		if err := ent.Register(w.Engine); err != nil {
			return nil, fmt.Errorf("build world: %w", err)
		}
		w.entities[es.Prefix] = ent
		w.order = append(w.order, es.Prefix)
	}

	for _, r := range spec.Rules {
		rule := logic.Implies(w.formula(r.If), w.formula(r.Then))
		var labelled logic.Formula
		if r.QualifiedName() != "" {
			labelled = logic.Label(rule, w.entities[r.Owner], r.Name)
			w.labels[r.Owner] = append(w.labels[r.Owner], r.Name)
		} else {
			labelled = logic.Label(rule, nil, r.ID)
		}
		if _, err := w.Engine.RegisterFormula(labelled); err != nil {
			return nil, fmt.Errorf("build world: rule %s: %w", r.ID, err)
		}
	}

	for _, fs := range spec.Formulas {
		body := w.formula(fs.Expr)
		if atom, ok := body.(*logic.Atom); ok {
			body = logic.And(atom)
		}
		tracked := logic.Label(body, w.entities[fs.Owner], fs.Name)
		if _, err := w.Engine.RegisterFormula(tracked); err != nil {
			return nil, fmt.Errorf("build world: formula %s: %w", fs.ID, err)
		}
		w.labels[fs.Owner] = append(w.labels[fs.Owner], fs.Name)
	}

	for _, g := range spec.Goals {
		w.Engine.RegisterGoal(g.Prefix, g.Token, g.Desired)
	}
	for _, f := range spec.Initial {
		w.Engine.ForceSet(f.Name, f.Value)
	}
	return w, nil
}

// formula converts a compiled expression. Names of entity attributes become
// the entity's atom; any other name refers to a formula by its label.
// Returns nil for a nil expression.
func (w *World) formula(e *compiler.Expr) logic.Formula {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case compiler.ExprAtom:
		return w.atom(e.Atom)
	case compiler.ExprNot:
		return logic.Not(w.formula(e.Operands[0]))
	case compiler.ExprAll:
		return logic.And(w.formulas(e.Operands)...)
	case compiler.ExprAny:
		return logic.Or(w.formulas(e.Operands)...)
	}
	return nil
}

func (w *World) formulas(es []*compiler.Expr) []logic.Formula {
	out := make([]logic.Formula, len(es))
	for i, e := range es {
		out[i] = w.formula(e)
	}
	return out
}

func (w *World) atom(name string) *logic.Atom {
	prefix, token, ok := strings.Cut(name, ".")
	if ok {
		if ent, found := w.entities[prefix]; found {
			if a := ent.Atom(token); a != nil {
				return a
			}
		}
	}
	return logic.Var(name)
}

// Entity returns the entity registered under prefix.
func (w *World) Entity(prefix string) (*entity.Entity, bool) {
	ent, ok := w.entities[prefix]
	return ent, ok
}

// Entities returns the entities in declaration order.
func (w *World) Entities() []*entity.Entity {
	out := make([]*entity.Entity, len(w.order))
	for i, prefix := range w.order {
		out[i] = w.entities[prefix]
	}
	return out
}

// ListenAll attaches fn to every attribute and every labelled formula or
// rule of every entity.
//
// Listening changes what the engine stores: a labelled rule records its own
// value only while its owner listens for it.
func (w *World) ListenAll(fn entity.Callback) {
	for _, prefix := range w.order {
		ent := w.entities[prefix]
		for _, token := range ent.Attributes() {
			ent.OnChange(token, fn)
		}
		for _, token := range w.labels[prefix] {
			ent.OnChange(token, fn)
		}
	}
}

// Report reports a fact by its qualified name.
func (w *World) Report(name string, value bool) (engine.Report, error) {
	return w.Engine.ReportFact(name, value)
}
