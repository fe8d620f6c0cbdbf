package compiler

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrDuplicateAttribute = "E201" // attribute declared twice on one entity
	ErrInvalidName        = "E202" // prefix, token or formula name is malformed
	ErrUnknownReference   = "E203" // expression names no attribute or formula
	ErrUnknownOwner       = "E204" // owner is not a declared entity
	ErrUnknownGoal        = "E205" // goal on an unknown attribute
	ErrDuplicateName      = "E206" // two formulas or rules share a name or id
	ErrUnknownInitial     = "E207" // initial value for an unknown name
	ErrEmptyRule          = "E208" // rule has neither if nor then
	ErrUnwinnable         = "E209" // goals can never be satisfied together
	ErrIncompleteLabel    = "E210" // owner without name or name without owner
)

// identPattern matches entity prefixes, attribute tokens and formula names.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a compiled world for broken cross references.
// Returns all errors found (does not fail-fast).
//
// Satisfiability of the goals is not checked here; see CheckGoals.
func Validate(spec *WorldSpec) []ValidationError {
	if spec == nil {
		return []ValidationError{{Field: "world", Message: "world is nil", Code: ErrInvalidName}}
	}

	var errs []ValidationError
	entities := make(map[string]bool)
	names := make(map[string]bool) // every name an expression may reference

	for _, e := range spec.Entities {
		field := "entity." + e.Prefix
		if !identPattern.MatchString(e.Prefix) {
			errs = append(errs, ValidationError{
				Field: field, Message: fmt.Sprintf("invalid entity prefix %q", e.Prefix),
				Code: ErrInvalidName, Line: e.Line,
			})
		}
		entities[e.Prefix] = true

		seen := make(map[string]bool)
		for _, token := range e.Attributes {
			if !identPattern.MatchString(token) {
				errs = append(errs, ValidationError{
					Field: field + ".attributes", Message: fmt.Sprintf("invalid attribute token %q", token),
					Code: ErrInvalidName, Line: e.Line,
				})
			}
			if seen[token] {
				errs = append(errs, ValidationError{
					Field: field + ".attributes", Message: fmt.Sprintf("duplicate attribute %q", token),
					Code: ErrDuplicateAttribute, Line: e.Line,
				})
			}
			seen[token] = true
			names[e.Prefix+"."+token] = true
		}
	}

	ids := make(map[string]string) // id -> "rule" or "formula"
	checkID := func(kind, id string, line int) {
		if !identPattern.MatchString(id) {
			errs = append(errs, ValidationError{
				Field: kind + "." + id, Message: fmt.Sprintf("invalid id %q", id),
				Code: ErrInvalidName, Line: line,
			})
		}
		if prev, ok := ids[id]; ok {
			errs = append(errs, ValidationError{
				Field: kind + "." + id, Message: fmt.Sprintf("id already used by %s.%s", prev, id),
				Code: ErrDuplicateName, Line: line,
			})
			return
		}
		ids[id] = kind
	}
	checkLabel := func(field, owner, name string, line int) bool {
		if owner != "" && !entities[owner] {
			errs = append(errs, ValidationError{
				Field: field + ".owner", Message: fmt.Sprintf("unknown owner %q", owner),
				Code: ErrUnknownOwner, Line: line,
			})
			return false
		}
		if name != "" && !identPattern.MatchString(name) {
			errs = append(errs, ValidationError{
				Field: field + ".name", Message: fmt.Sprintf("invalid name %q", name),
				Code: ErrInvalidName, Line: line,
			})
			return false
		}
		qualified := owner + "." + name
		if names[qualified] {
			errs = append(errs, ValidationError{
				Field: field + ".name", Message: fmt.Sprintf("name %q already declared", qualified),
				Code: ErrDuplicateName, Line: line,
			})
			return false
		}
		names[qualified] = true
		return true
	}

	// Labels first, so expressions may reference formulas declared later.
	for _, r := range spec.Rules {
		field := "rule." + r.ID
		checkID("rule", r.ID, r.Line)
		switch {
		case (r.Owner == "") != (r.Name == ""):
			errs = append(errs, ValidationError{
				Field: field, Message: "owner and name must be given together",
				Code: ErrIncompleteLabel, Line: r.Line,
			})
		case r.Owner != "":
			checkLabel(field, r.Owner, r.Name, r.Line)
		}
		if r.If == nil && r.Then == nil {
			errs = append(errs, ValidationError{
				Field: field, Message: "rule needs if, then or both",
				Code: ErrEmptyRule, Line: r.Line,
			})
		}
	}
	for _, f := range spec.Formulas {
		field := "formula." + f.ID
		checkID("formula", f.ID, f.Line)
		if f.Owner == "" || f.Name == "" {
			errs = append(errs, ValidationError{
				Field: field, Message: "tracked formula needs owner and name",
				Code: ErrIncompleteLabel, Line: f.Line,
			})
			continue
		}
		checkLabel(field, f.Owner, f.Name, f.Line)
	}

	checkExpr := func(field string, e *Expr) {
		for _, name := range e.Atoms() {
			if !names[name] {
				errs = append(errs, ValidationError{
					Field: field, Message: fmt.Sprintf("unknown reference %q", name),
					Code: ErrUnknownReference, Line: exprLine(e),
				})
			}
		}
	}
	for _, r := range spec.Rules {
		checkExpr("rule."+r.ID+".if", r.If)
		checkExpr("rule."+r.ID+".then", r.Then)
	}
	for _, f := range spec.Formulas {
		checkExpr("formula."+f.ID+".expr", f.Expr)
	}

	for _, g := range spec.Goals {
		field := "goal." + g.Prefix + "." + g.Token
		if !entities[g.Prefix] {
			errs = append(errs, ValidationError{
				Field: field, Message: fmt.Sprintf("unknown entity %q", g.Prefix),
				Code: ErrUnknownGoal,
			})
			continue
		}
		if !names[g.Name()] {
			errs = append(errs, ValidationError{
				Field: field, Message: fmt.Sprintf("entity %s has no attribute or formula %q", g.Prefix, g.Token),
				Code: ErrUnknownGoal,
			})
		}
	}

	for _, f := range spec.Initial {
		if !names[f.Name] {
			msg := fmt.Sprintf("unknown name %q", f.Name)
			if !strings.Contains(f.Name, ".") {
				msg += " (names are qualified: Prefix.token)"
			}
			errs = append(errs, ValidationError{
				Field: "initial." + f.Name, Message: msg, Code: ErrUnknownInitial,
			})
		}
	}

	return errs
}

func exprLine(e *Expr) int {
	if e == nil {
		return 0
	}
	return e.Line
}
