package compiler

import (
	"fmt"

	"github.com/roach88/verity/internal/logic"
)

// WorldHash returns the content hash of a compiled world.
//
// Source positions are excluded: reformatting a world file does not change
// its hash. The journal records it per session so a trace can be replayed
// against the world that produced it.
func WorldHash(spec *WorldSpec) (string, error) {
	data, err := logic.MarshalCanonical(worldToCanonical(spec))
	if err != nil {
		return "", fmt.Errorf("hash world: %w", err)
	}
	return logic.HashWithDomain(logic.DomainWorld, data), nil
}

func worldToCanonical(spec *WorldSpec) map[string]any {
	entities := make([]any, len(spec.Entities))
	for i, e := range spec.Entities {
		entities[i] = map[string]any{
			"prefix":     e.Prefix,
			"attributes": e.Attributes,
		}
	}

	rules := make([]any, len(spec.Rules))
	for i, r := range spec.Rules {
		m := map[string]any{"id": r.ID}
		if r.If != nil {
			m["if"] = exprToCanonical(r.If)
		}
		if r.Then != nil {
			m["then"] = exprToCanonical(r.Then)
		}
		if r.Owner != "" {
			m["owner"] = r.Owner
		}
		if r.Name != "" {
			m["name"] = r.Name
		}
		rules[i] = m
	}

	formulas := make([]any, len(spec.Formulas))
	for i, f := range spec.Formulas {
		formulas[i] = map[string]any{
			"id":    f.ID,
			"owner": f.Owner,
			"name":  f.Name,
			"expr":  exprToCanonical(f.Expr),
		}
	}

	goals := make([]any, len(spec.Goals))
	for i, g := range spec.Goals {
		goals[i] = map[string]any{"prefix": g.Prefix, "token": g.Token, "desired": g.Desired}
	}

	initial := make([]any, len(spec.Initial))
	for i, f := range spec.Initial {
		initial[i] = map[string]any{"name": f.Name, "value": f.Value}
	}

	return map[string]any{
		"name":     spec.Name,
		"entities": entities,
		"rules":    rules,
		"formulas": formulas,
		"goals":    goals,
		"initial":  initial,
	}
}

func exprToCanonical(e *Expr) any {
	if e.Kind == ExprAtom {
		return e.Atom
	}
	ops := make([]any, len(e.Operands))
	for i, op := range e.Operands {
		ops[i] = exprToCanonical(op)
	}
	if e.Kind == ExprNot && len(ops) == 1 {
		return map[string]any{"not": ops[0]}
	}
	return map[string]any{string(e.Kind): ops}
}
