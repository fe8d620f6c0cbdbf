// Package entity provides the concrete owner of game facts.
//
// An Entity is one interactive object: a namespace prefix, the attribute
// tokens it exposes, and the callbacks that react when the engine resolves
// one of its facts. Callbacks only see changes; a value delivered twice in a
// row is reported once.
package entity

import (
	"fmt"
	"slices"

	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/logic"
)

// Callback receives the resolved value of one fact.
type Callback func(name string, value logic.Truth)

// Entity owns a set of attributes under one prefix.
//
// Entity implements engine.Notifier. It is not safe for concurrent use; the
// engine delivers notifications on its own goroutine.
type Entity struct {
	prefix     string
	attributes []string
	atoms      map[string]*logic.Atom
	callbacks  map[string][]Callback
	delivered  map[string]logic.Truth

	engine *engine.Engine
}

// New creates an entity with the given attribute tokens.
// Duplicate tokens are ignored.
func New(prefix string, attributes ...string) *Entity {
	e := &Entity{
		prefix:    prefix,
		atoms:     make(map[string]*logic.Atom),
		callbacks: make(map[string][]Callback),
		delivered: make(map[string]logic.Truth),
	}
	for _, token := range attributes {
		e.AddAttribute(token)
	}
	return e
}

// Prefix implements logic.Owner.
func (e *Entity) Prefix() string { return e.prefix }

// AddAttribute declares a new attribute token. Reports whether it was new.
// Attributes added after Register are not registered automatically.
func (e *Entity) AddAttribute(token string) bool {
	if _, ok := e.atoms[token]; ok {
		return false
	}
	e.attributes = append(e.attributes, token)
	e.atoms[token] = logic.NewAtom(e, token)
	return true
}

// Attributes returns the attribute tokens in declaration order.
func (e *Entity) Attributes() []string {
	return slices.Clone(e.attributes)
}

// Atom returns the atom for token, or nil if the entity has no such attribute.
func (e *Entity) Atom(token string) *logic.Atom {
	return e.atoms[token]
}

// Name returns the qualified fact name for token.
func (e *Entity) Name(token string) string {
	return logic.QualifiedName(e.prefix, token)
}

// OnChange registers fn for the fact prefix.token. token may name an
// attribute or a formula the entity owns.
func (e *Entity) OnChange(token string, fn Callback) {
	name := e.Name(token)
	e.callbacks[name] = append(e.callbacks[name], fn)
}

// HasCallback implements engine.Notifier.
func (e *Entity) HasCallback(name string) bool {
	return len(e.callbacks[name]) > 0
}

// Notify implements engine.Notifier. Callbacks run only when value differs
// from the last value delivered for name.
func (e *Entity) Notify(name string, value logic.Truth) {
	if last, ok := e.delivered[name]; ok && last == value {
		return
	}
	e.delivered[name] = value
	for _, fn := range e.callbacks[name] {
		fn(name, value)
	}
}

// Register adds the entity and its attribute atoms to eng and binds the
// entity to it for Report and Goal.
func (e *Entity) Register(eng *engine.Engine) error {
	if err := eng.RegisterEntity(e); err != nil {
		return err
	}
	for _, token := range e.attributes {
		if err := eng.RegisterAtom(e.atoms[token]); err != nil {
			return fmt.Errorf("entity %s: %w", e.prefix, err)
		}
	}
	e.engine = eng
	return nil
}

// Report tells the bound engine that attribute token changed.
func (e *Entity) Report(token string, value bool) (engine.Report, error) {
	if e.engine == nil {
		return engine.Report{}, fmt.Errorf("entity %s: not registered", e.prefix)
	}
	return e.engine.ReportFact(e.Name(token), value)
}

// Goal declares a desired value for attribute token on the bound engine.
func (e *Entity) Goal(token string, desired bool) (engine.GoalChange, error) {
	if e.engine == nil {
		return 0, fmt.Errorf("entity %s: not registered", e.prefix)
	}
	return e.engine.RegisterGoal(e.prefix, token, desired), nil
}

// Value returns the bound engine's current value for attribute token.
func (e *Entity) Value(token string) logic.Truth {
	if e.engine == nil {
		return logic.Unknown
	}
	return e.engine.Value(e.Name(token))
}
