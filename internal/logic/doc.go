// Package logic provides the propositional value model of the fact engine.
//
// This package holds pure values only: three-valued truth, formulas,
// assignments of names to truth values, and the interpretation that evaluates
// one against the other. logic imports nothing internal; every other package
// builds on it.
//
// Key design constraints:
//   - Open world: a name an Assignment does not hold is Unknown, never False
//   - Formulas are immutable once built; Assignments are mutable
//   - Iteration over an Assignment follows insertion order (deterministic)
//   - Content hashes use RFC 8785 canonical JSON with domain separation
package logic
