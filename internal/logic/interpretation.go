package logic

// Interpretation evaluates formulas against a bound Assignment using
// three-valued (Kleene) semantics. Names the assignment does not know
// evaluate to Unknown.
//
// An Interpretation is rebound with SetAssignment rather than reallocated;
// the propagation pass evaluates every rule through one instance.
type Interpretation struct {
	a *Assignment
}

// NewInterpretation binds a new evaluator to a.
func NewInterpretation(a *Assignment) *Interpretation {
	return &Interpretation{a: a}
}

// SetAssignment rebinds the evaluator.
func (in *Interpretation) SetAssignment(a *Assignment) {
	in.a = a
}

// Assignment returns the bound assignment.
func (in *Interpretation) Assignment() *Assignment {
	return in.a
}

// Evaluate computes the truth value of f. A nil formula is Unknown.
func (in *Interpretation) Evaluate(f Formula) Truth {
	switch v := f.(type) {
	case *Atom:
		if in.a == nil {
			return Unknown
		}
		return in.a.Value(v.name)

	case *Negation:
		return in.Evaluate(v.Operand).Negate()

	case *Conjunction:
		return in.conjunction(v.Operands)

	case *Disjunction:
		return in.disjunction(v.Operands)

	case *Implication:
		return in.implication(v)

	case *NormalForm:
		return in.Evaluate(v.Expand())

	default:
		return Unknown
	}
}

func (in *Interpretation) conjunction(ops []Formula) Truth {
	result := True
	for _, op := range ops {
		switch in.Evaluate(op) {
		case False:
			return False
		case Unknown:
			result = Unknown
		}
	}
	return result
}

func (in *Interpretation) disjunction(ops []Formula) Truth {
	result := False
	for _, op := range ops {
		switch in.Evaluate(op) {
		case True:
			return True
		case Unknown:
			result = Unknown
		}
	}
	return result
}

// implication is material implication over three values. A one-sided
// implication takes the value of its present side.
func (in *Interpretation) implication(i *Implication) Truth {
	switch {
	case i.Antecedent == nil && i.Consequent == nil:
		return True
	case i.Consequent == nil:
		return in.Evaluate(i.Antecedent)
	case i.Antecedent == nil:
		return in.Evaluate(i.Consequent)
	}

	p := in.Evaluate(i.Antecedent)
	if p == False {
		return True
	}
	q := in.Evaluate(i.Consequent)
	if q == True {
		return True
	}
	if p == True {
		return q
	}
	return Unknown
}
