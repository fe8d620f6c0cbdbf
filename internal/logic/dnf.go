package logic

import "fmt"

// MaxNormalFormAtoms bounds DNF so that every minterm fits in a uint64 mask.
const MaxNormalFormAtoms = 6

// NormalForm is a disjunctive normal form selected from the truth table of
// Atoms. Bit i of Mask includes minterm i; inside minterm i, atom j is
// affirmed when bit j of i is set and negated otherwise.
type NormalForm struct {
	label
	Atoms []*Atom
	Mask  uint64
}

func (*NormalForm) formula() {}

func (n *NormalForm) String() string { return n.Expand().String() }

// DNF builds the normal form over atoms for mask.
func DNF(atoms []*Atom, mask uint64) (*NormalForm, error) {
	if len(atoms) > MaxNormalFormAtoms {
		return nil, fmt.Errorf("dnf: %d atoms exceeds limit of %d", len(atoms), MaxNormalFormAtoms)
	}
	if minterms := uint(1) << uint(len(atoms)); minterms < 64 && mask>>minterms != 0 {
		return nil, fmt.Errorf("dnf: mask %#x selects minterms beyond %d", mask, minterms)
	}
	return &NormalForm{Atoms: atoms, Mask: mask}, nil
}

// Expand returns the explicit Disjunction of Conjunctions.
func (n *NormalForm) Expand() *Disjunction {
	minterms := 1 << uint(len(n.Atoms))
	var terms []Formula
	for i := 0; i < minterms; i++ {
		if n.Mask&(1<<uint(i)) == 0 {
			continue
		}
		lits := make([]Formula, len(n.Atoms))
		for j, a := range n.Atoms {
			if i&(1<<uint(j)) != 0 {
				lits[j] = a
			} else {
				lits[j] = Not(a)
			}
		}
		terms = append(terms, And(lits...))
	}
	return Or(terms...)
}
