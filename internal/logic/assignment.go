package logic

import "slices"

// Assignment maps proposition names to known truth values. It represents one
// possible world-state.
//
// The mapping is open-world: a missing name is Unknown, not False. Names keep
// the order in which they were first set, so iteration is deterministic.
//
// Assignments are mutable and not safe for concurrent use.
type Assignment struct {
	names  []string
	values map[string]Truth
}

// NewAssignment creates an empty assignment.
func NewAssignment() *Assignment {
	return &Assignment{values: make(map[string]Truth)}
}

// AssignmentOf builds an assignment from name/bool pairs in the given order.
func AssignmentOf(pairs ...Pair) *Assignment {
	a := NewAssignment()
	for _, p := range pairs {
		a.Set(p.Name, FromBool(p.Value))
	}
	return a
}

// Pair is a name/value entry used for ordered construction.
type Pair struct {
	Name  string
	Value bool
}

// P is a shorthand for Pair.
func P(name string, value bool) Pair {
	return Pair{Name: name, Value: value}
}

// Get returns the value for name. ok is false (and the value Unknown) when
// the assignment has no opinion on name.
func (a *Assignment) Get(name string) (Truth, bool) {
	v, ok := a.values[name]
	if !ok {
		return Unknown, false
	}
	return v, true
}

// Value is Get without the presence flag.
func (a *Assignment) Value(name string) Truth {
	return a.values[name]
}

// Set stores v under name, appending name if it is new.
// Setting Unknown removes the entry.
func (a *Assignment) Set(name string, v Truth) {
	if !v.IsKnown() {
		a.Remove(name)
		return
	}
	if _, ok := a.values[name]; !ok {
		a.names = append(a.names, name)
	}
	a.values[name] = v
}

// Replace overwrites name only if it is already present.
// Reports whether a replacement happened.
func (a *Assignment) Replace(name string, v Truth) bool {
	if _, ok := a.values[name]; !ok || !v.IsKnown() {
		return false
	}
	a.values[name] = v
	return true
}

// Remove deletes name. Reports whether it was present.
func (a *Assignment) Remove(name string) bool {
	if _, ok := a.values[name]; !ok {
		return false
	}
	delete(a.values, name)
	a.names = slices.DeleteFunc(a.names, func(n string) bool { return n == name })
	return true
}

// IsEmpty reports whether the assignment holds no values.
func (a *Assignment) IsEmpty() bool {
	return len(a.values) == 0
}

// Len returns the number of names with a known value.
func (a *Assignment) Len() int {
	return len(a.values)
}

// Names returns the names in insertion order. The slice is a copy.
func (a *Assignment) Names() []string {
	return slices.Clone(a.names)
}

// Clone returns an independent copy.
func (a *Assignment) Clone() *Assignment {
	c := &Assignment{
		names:  slices.Clone(a.names),
		values: make(map[string]Truth, len(a.values)),
	}
	for k, v := range a.values {
		c.values[k] = v
	}
	return c
}

// Equal reports structural equality: the same names with the same values,
// regardless of insertion order.
func (a *Assignment) Equal(other *Assignment) bool {
	if a == other {
		return true
	}
	if a == nil || other == nil || len(a.values) != len(other.values) {
		return false
	}
	for k, v := range a.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// CompareTo is a similarity score: the number of name/value pairs of a that
// other holds with the same value.
//
// It is not an order. Ties and incomparable pairs are the caller's problem.
func (a *Assignment) CompareTo(other *Assignment) int {
	score := 0
	for k, v := range a.values {
		if ov, ok := other.values[k]; ok && ov == v {
			score++
		}
	}
	return score
}

// ToFormula builds the conjunction of literals that reproduces a: an atom for
// every true name and a negated atom for every false one. The result is
// always designated under a itself.
func (a *Assignment) ToFormula() *Conjunction {
	lits := make([]Formula, 0, len(a.names))
	for _, name := range a.names {
		atom := Var(name)
		if a.values[name].IsDesignated() {
			lits = append(lits, atom)
		} else {
			lits = append(lits, Not(atom))
		}
	}
	return And(lits...)
}

// Snapshot returns the assignment as a plain map.
func (a *Assignment) Snapshot() map[string]bool {
	out := make(map[string]bool, len(a.values))
	for k, v := range a.values {
		out[k] = v.IsDesignated()
	}
	return out
}

func (a *Assignment) String() string {
	return a.ToFormula().String()
}
