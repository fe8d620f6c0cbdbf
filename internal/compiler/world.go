package compiler

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"
)

// CompileWorld parses a CUE value into a WorldSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value is the root of a world package:
//
//	entity: Door: attributes: ["IsLocked", "IsOpen"]
//	rule: open_needs_unlocked: {
//		if:   "Door.IsOpen"
//		then: {not: "Door.IsLocked"}
//	}
//	goal: Door: IsOpen: true
//	initial: "Door.IsLocked": true
//
// CompileWorld checks shape only. Cross references are checked by Validate.
func CompileWorld(v cue.Value) (*WorldSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &WorldSpec{
		Entities: []EntitySpec{},
		Rules:    []RuleSpec{},
		Formulas: []FormulaSpec{},
		Goals:    []GoalSpec{},
		Initial:  []InitialFact{},
	}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Name = name
	}

	var err error
	if spec.Entities, err = parseEntities(v); err != nil {
		return nil, err
	}
	if spec.Rules, err = parseRules(v); err != nil {
		return nil, err
	}
	if spec.Formulas, err = parseFormulas(v); err != nil {
		return nil, err
	}
	if spec.Goals, err = parseGoals(v); err != nil {
		return nil, err
	}
	if spec.Initial, err = parseInitial(v); err != nil {
		return nil, err
	}
	return spec, nil
}

// eachField calls fn for every regular field of the struct at path.
// A missing path is not an error.
func eachField(v cue.Value, path string, fn func(label string, field cue.Value) error) error {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return nil
	}
	if val.Kind() != cue.StructKind {
		return &CompileError{Field: path, Message: "must be a struct", Pos: val.Pos()}
	}
	iter, err := val.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Selector().Unquoted(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// checkFields rejects struct fields outside allowed.
func checkFields(v cue.Value, field string, allowed ...string) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		if !slices.Contains(allowed, label) {
			return &CompileError{
				Field:   field + "." + label,
				Message: fmt.Sprintf("unknown field (allowed: %v)", allowed),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

func parseEntities(v cue.Value) ([]EntitySpec, error) {
	entities := []EntitySpec{}
	err := eachField(v, "entity", func(prefix string, ev cue.Value) error {
		field := "entity." + prefix
		if ev.Kind() != cue.StructKind {
			return &CompileError{Field: field, Message: "must be a struct", Pos: ev.Pos()}
		}
		if err := checkFields(ev, field, "attributes"); err != nil {
			return err
		}
		attrs, err := parseStringList(ev.LookupPath(cue.ParsePath("attributes")), field+".attributes")
		if err != nil {
			return err
		}
		entities = append(entities, EntitySpec{
			Prefix:     prefix,
			Attributes: attrs,
			Line:       lineOf(ev),
		})
		return nil
	})
	return entities, err
}

func parseStringList(v cue.Value, field string) ([]string, error) {
	out := []string{}
	if !v.Exists() {
		return out, nil
	}
	if v.Kind() != cue.ListKind {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

func parseRules(v cue.Value) ([]RuleSpec, error) {
	rules := []RuleSpec{}
	err := eachField(v, "rule", func(id string, rv cue.Value) error {
		field := "rule." + id
		if rv.Kind() != cue.StructKind {
			return &CompileError{Field: field, Message: "must be a struct", Pos: rv.Pos()}
		}
		if err := checkFields(rv, field, "if", "then", "owner", "name"); err != nil {
			return err
		}

		rule := RuleSpec{ID: id, Line: lineOf(rv)}
		var err error
		if rule.If, err = optionalExpr(rv, "if", field); err != nil {
			return err
		}
		if rule.Then, err = optionalExpr(rv, "then", field); err != nil {
			return err
		}
		if rule.Owner, err = optionalString(rv, "owner", field); err != nil {
			return err
		}
		if rule.Name, err = optionalString(rv, "name", field); err != nil {
			return err
		}
		rules = append(rules, rule)
		return nil
	})
	return rules, err
}

func parseFormulas(v cue.Value) ([]FormulaSpec, error) {
	formulas := []FormulaSpec{}
	err := eachField(v, "formula", func(id string, fv cue.Value) error {
		field := "formula." + id
		if fv.Kind() != cue.StructKind {
			return &CompileError{Field: field, Message: "must be a struct", Pos: fv.Pos()}
		}
		if err := checkFields(fv, field, "owner", "name", "expr"); err != nil {
			return err
		}

		f := FormulaSpec{ID: id, Line: lineOf(fv)}
		var err error
		if f.Owner, err = optionalString(fv, "owner", field); err != nil {
			return err
		}
		if f.Name, err = optionalString(fv, "name", field); err != nil {
			return err
		}
		if f.Expr, err = optionalExpr(fv, "expr", field); err != nil {
			return err
		}
		if f.Expr == nil {
			return &CompileError{Field: field + ".expr", Message: "expr is required", Pos: fv.Pos()}
		}
		formulas = append(formulas, f)
		return nil
	})
	return formulas, err
}

func parseGoals(v cue.Value) ([]GoalSpec, error) {
	goals := []GoalSpec{}
	err := eachField(v, "goal", func(prefix string, gv cue.Value) error {
		field := "goal." + prefix
		if gv.Kind() != cue.StructKind {
			return &CompileError{Field: field, Message: "must be a struct of token: bool", Pos: gv.Pos()}
		}
		iter, err := gv.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			token := iter.Selector().Unquoted()
			desired, err := iter.Value().Bool()
			if err != nil {
				return &CompileError{Field: field + "." + token, Message: "must be a bool", Pos: iter.Value().Pos()}
			}
			goals = append(goals, GoalSpec{Prefix: prefix, Token: token, Desired: desired})
		}
		return nil
	})
	return goals, err
}

func parseInitial(v cue.Value) ([]InitialFact, error) {
	initial := []InitialFact{}
	err := eachField(v, "initial", func(name string, iv cue.Value) error {
		value, err := iv.Bool()
		if err != nil {
			return &CompileError{Field: "initial." + name, Message: "must be a bool", Pos: iv.Pos()}
		}
		initial = append(initial, InitialFact{Name: name, Value: value})
		return nil
	})
	return initial, err
}

func optionalString(v cue.Value, key, field string) (string, error) {
	sv := v.LookupPath(cue.MakePath(cue.Str(key)))
	if !sv.Exists() {
		return "", nil
	}
	s, err := sv.String()
	if err != nil {
		return "", &CompileError{Field: field + "." + key, Message: "must be a string", Pos: sv.Pos()}
	}
	return s, nil
}

func optionalExpr(v cue.Value, key, field string) (*Expr, error) {
	ev := v.LookupPath(cue.MakePath(cue.Str(key)))
	if !ev.Exists() {
		return nil, nil
	}
	return parseExpr(ev, field+"."+key)
}

// parseExpr reads a string atom or a struct with exactly one of not, all
// and any.
func parseExpr(v cue.Value, field string) (*Expr, error) {
	line := lineOf(v)
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if s == "" {
			return nil, &CompileError{Field: field, Message: "atom name is empty", Pos: v.Pos()}
		}
		return &Expr{Kind: ExprAtom, Atom: s, Line: line}, nil

	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var op string
		var operand cue.Value
		for iter.Next() {
			if op != "" {
				return nil, &CompileError{Field: field, Message: "expression must have exactly one of not, all, any", Pos: v.Pos()}
			}
			op = iter.Selector().Unquoted()
			operand = iter.Value()
		}

		switch op {
		case "not":
			inner, err := parseExpr(operand, field+".not")
			if err != nil {
				return nil, err
			}
			return &Expr{Kind: ExprNot, Operands: []*Expr{inner}, Line: line}, nil
		case "all", "any":
			ops, err := parseExprList(operand, field+"."+op)
			if err != nil {
				return nil, err
			}
			return &Expr{Kind: ExprKind(op), Operands: ops, Line: line}, nil
		default:
			return nil, &CompileError{Field: field, Message: "expression must have exactly one of not, all, any", Pos: v.Pos()}
		}
	}
	return nil, &CompileError{Field: field, Message: "expression must be a string or a struct", Pos: v.Pos()}
}

func parseExprList(v cue.Value, field string) ([]*Expr, error) {
	if v.Kind() != cue.ListKind {
		return nil, &CompileError{Field: field, Message: "must be a list of expressions", Pos: v.Pos()}
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	ops := []*Expr{}
	for i := 0; iter.Next(); i++ {
		op, err := parseExpr(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func lineOf(v cue.Value) int {
	pos := v.Pos()
	if !pos.IsValid() {
		return 0
	}
	return pos.Line()
}
