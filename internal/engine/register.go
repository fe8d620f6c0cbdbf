package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/verity/internal/logic"
)

// RegisterEntity adds an owner to the session. Its prefix namespaces every
// atom and named formula it owns and must be unique.
func (e *Engine) RegisterEntity(owner logic.Owner) error {
	if owner == nil {
		return newRegistrationError(ErrCodeInvalidName, "", "entity is nil")
	}
	prefix := owner.Prefix()
	if err := checkName(prefix); err != nil {
		return err
	}
	if _, ok := e.entities[prefix]; ok {
		return newRegistrationError(ErrCodeDuplicateEntity, prefix, "entity already registered")
	}

	e.entities[prefix] = owner
	e.entityOrder = append(e.entityOrder, prefix)
	e.logger.Debug("entity registered", "prefix", prefix)
	return nil
}

// Entity looks up a registered owner by prefix.
func (e *Engine) Entity(prefix string) (logic.Owner, bool) {
	o, ok := e.entities[prefix]
	return o, ok
}

// Entities returns the registered prefixes in registration order.
func (e *Engine) Entities() []string {
	return append([]string(nil), e.entityOrder...)
}

// RegisterAtom adds an atom to the formula registry under its name.
// An owned atom's owner must already be registered.
func (e *Engine) RegisterAtom(a *logic.Atom) error {
	if a == nil {
		return newRegistrationError(ErrCodeInvalidName, "", "atom is nil")
	}
	if err := checkName(a.Name()); err != nil {
		return err
	}
	if err := e.checkOwner(a); err != nil {
		return err
	}
	if _, ok := e.formulas[a.Name()]; ok {
		return newRegistrationError(ErrCodeDuplicateAtom, a.Name(), "atom already registered")
	}

	e.addFormula(a.Name(), a)
	return nil
}

// RegisterFormula adds f to the formula registry and returns its id.
//
// Atoms are registered as by RegisterAtom. Named formulas use their name as
// id; anonymous ones get a generated id. Implications become rules; named
// compound formulas become tracked formulas.
func (e *Engine) RegisterFormula(f logic.Formula) (string, error) {
	if f == nil {
		return "", newRegistrationError(ErrCodeInvalidName, "", "formula is nil")
	}
	if a, ok := f.(*logic.Atom); ok {
		if err := e.RegisterAtom(a); err != nil {
			return "", err
		}
		return a.Name(), nil
	}

	id := f.Name()
	if id == "" {
		id = fmt.Sprintf("formula-%d", e.ids.Next())
	} else if err := checkName(id); err != nil {
		return "", err
	}
	if err := e.checkOwner(f); err != nil {
		return "", err
	}
	if _, ok := e.formulas[id]; ok {
		return "", newRegistrationError(ErrCodeDuplicateFormula, id, "formula already registered")
	}

	e.addFormula(id, f)
	switch {
	case isRule(f):
		e.rules = append(e.rules, id)
	case f.Name() != "":
		e.tracked = append(e.tracked, id)
	}
	return id, nil
}

func (e *Engine) addFormula(id string, f logic.Formula) {
	e.formulas[id] = f
	e.formulaOrder = append(e.formulaOrder, id)
	e.logger.Debug("formula registered", "id", id, "formula", f.String())
}

func (e *Engine) checkOwner(f logic.Formula) error {
	owner := f.Owner()
	if owner == nil {
		return nil
	}
	if _, ok := e.entities[owner.Prefix()]; !ok {
		return newRegistrationError(ErrCodeUnknownOwner, f.Name(),
			"owner %q is not a registered entity", owner.Prefix())
	}
	return nil
}

func isRule(f logic.Formula) bool {
	_, ok := f.(*logic.Implication)
	return ok
}

// checkName rejects empty names and names with surrounding whitespace.
func checkName(name string) error {
	if name == "" {
		return newRegistrationError(ErrCodeInvalidName, name, "name is empty")
	}
	if strings.TrimSpace(name) != name {
		return newRegistrationError(ErrCodeInvalidName, name, "name has surrounding whitespace")
	}
	return nil
}
