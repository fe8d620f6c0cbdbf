package logic

import "strings"

// Owner is the entity a named formula belongs to.
// The prefix namespaces every atom the owner registers.
type Owner interface {
	Prefix() string
}

// QualifiedName joins an owner prefix and an attribute token into the global
// lookup key ("Door" + "IsLocked" -> "Door.IsLocked").
func QualifiedName(prefix, token string) string {
	if prefix == "" {
		return token
	}
	return prefix + "." + token
}

// Formula is a sealed interface over propositional expressions.
// Only Atom, Negation, Conjunction, Disjunction, Implication and NormalForm
// implement it.
//
// Atoms always carry a name. Compound formulas are anonymous unless labelled
// with Label, which lets them be tracked and notified like a first-class fact.
type Formula interface {
	// Name is the global lookup key, or "" for an anonymous formula.
	Name() string
	// Owner is the owning entity, or nil.
	Owner() Owner
	String() string

	formula() // Sealed
}

type label struct {
	name  string
	owner Owner
}

func (l label) Name() string { return l.name }
func (l label) Owner() Owner { return l.owner }

// Atom is the leaf proposition: one attribute of one entity.
type Atom struct {
	label
	token string
}

func (*Atom) formula() {}

// NewAtom creates the atom for owner's attribute token.
// The atom's name is QualifiedName(owner.Prefix(), token).
func NewAtom(owner Owner, token string) *Atom {
	prefix := ""
	if owner != nil {
		prefix = owner.Prefix()
	}
	return &Atom{label: label{name: QualifiedName(prefix, token), owner: owner}, token: token}
}

// Var creates an unowned atom referring to name. Used when materialising an
// Assignment back into a formula.
func Var(name string) *Atom {
	return &Atom{label: label{name: name}, token: name}
}

// Token returns the attribute token without the owner prefix.
func (a *Atom) Token() string { return a.token }

func (a *Atom) String() string { return a.name }

// Negation is ¬Operand.
type Negation struct {
	label
	Operand Formula
}

func (*Negation) formula() {}

func (n *Negation) String() string { return "!" + formulaString(n.Operand) }

// Conjunction is designated iff every operand is. The empty conjunction is true.
type Conjunction struct {
	label
	Operands []Formula
}

func (*Conjunction) formula() {}

func (c *Conjunction) String() string { return joinOperands(c.Operands, " & ", "true") }

// Disjunction is designated iff some operand is. The empty disjunction is false.
type Disjunction struct {
	label
	Operands []Formula
}

func (*Disjunction) formula() {}

func (d *Disjunction) String() string { return joinOperands(d.Operands, " | ", "false") }

// Implication is Antecedent ⇒ Consequent. Either side may be nil:
// a nil Antecedent makes a pure consequence to chase, a nil Consequent a
// pure condition to demand.
type Implication struct {
	label
	Antecedent Formula
	Consequent Formula
}

func (*Implication) formula() {}

func (i *Implication) String() string {
	return "(" + formulaString(i.Antecedent) + " -> " + formulaString(i.Consequent) + ")"
}

// Not builds ¬f.
func Not(f Formula) *Negation { return &Negation{Operand: f} }

// And builds the conjunction of fs.
func And(fs ...Formula) *Conjunction { return &Conjunction{Operands: fs} }

// Or builds the disjunction of fs.
func Or(fs ...Formula) *Disjunction { return &Disjunction{Operands: fs} }

// Implies builds p ⇒ q. Pass nil for a one-sided implication.
func Implies(p, q Formula) *Implication { return &Implication{Antecedent: p, Consequent: q} }

// Label returns a copy of the compound formula f named after owner's token.
// Atoms already have an identity and are returned unchanged.
func Label(f Formula, owner Owner, token string) Formula {
	prefix := ""
	if owner != nil {
		prefix = owner.Prefix()
	}
	l := label{name: QualifiedName(prefix, token), owner: owner}

	switch v := f.(type) {
	case *Negation:
		c := *v
		c.label = l
		return &c
	case *Conjunction:
		c := *v
		c.label = l
		return &c
	case *Disjunction:
		c := *v
		c.label = l
		return &c
	case *Implication:
		c := *v
		c.label = l
		return &c
	case *NormalForm:
		c := *v
		c.label = l
		return &c
	default:
		return f
	}
}

// Contains reports whether an atom named name occurs anywhere in f.
func Contains(f Formula, name string) bool {
	switch v := f.(type) {
	case nil:
		return false
	case *Atom:
		return v.name == name
	case *Negation:
		return Contains(v.Operand, name)
	case *Conjunction:
		for _, op := range v.Operands {
			if Contains(op, name) {
				return true
			}
		}
	case *Disjunction:
		for _, op := range v.Operands {
			if Contains(op, name) {
				return true
			}
		}
	case *Implication:
		return Contains(v.Antecedent, name) || Contains(v.Consequent, name)
	case *NormalForm:
		for _, a := range v.Atoms {
			if a.name == name {
				return true
			}
		}
	}
	return false
}

// AtomNames lists the atom names occurring in f, in first-occurrence order.
func AtomNames(f Formula) []string {
	var names []string
	seen := make(map[string]bool)
	walkAtoms(f, func(a *Atom) {
		if !seen[a.name] {
			seen[a.name] = true
			names = append(names, a.name)
		}
	})
	return names
}

func walkAtoms(f Formula, visit func(*Atom)) {
	switch v := f.(type) {
	case *Atom:
		visit(v)
	case *Negation:
		walkAtoms(v.Operand, visit)
	case *Conjunction:
		for _, op := range v.Operands {
			walkAtoms(op, visit)
		}
	case *Disjunction:
		for _, op := range v.Operands {
			walkAtoms(op, visit)
		}
	case *Implication:
		walkAtoms(v.Antecedent, visit)
		walkAtoms(v.Consequent, visit)
	case *NormalForm:
		for _, a := range v.Atoms {
			visit(a)
		}
	}
}

func formulaString(f Formula) string {
	if f == nil {
		return "_"
	}
	return f.String()
}

func joinOperands(ops []Formula, sep, empty string) string {
	if len(ops) == 0 {
		return empty
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = formulaString(op)
	}
	return "(" + strings.Join(parts, sep) + ")"
}
