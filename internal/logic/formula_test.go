package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOwner string

func (o testOwner) Prefix() string { return string(o) }

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "Door.IsLocked", QualifiedName("Door", "IsLocked"))
	assert.Equal(t, "IsLocked", QualifiedName("", "IsLocked"))
}

func TestNewAtom(t *testing.T) {
	door := testOwner("Door")
	a := NewAtom(door, "IsOpen")

	assert.Equal(t, "Door.IsOpen", a.Name())
	assert.Equal(t, "IsOpen", a.Token())
	assert.Equal(t, door, a.Owner())

	unowned := NewAtom(nil, "Lit")
	assert.Equal(t, "Lit", unowned.Name())
	assert.Nil(t, unowned.Owner())
}

func TestFormula_String(t *testing.T) {
	a, b := Var("a"), Var("b")

	assert.Equal(t, "!a", Not(a).String())
	assert.Equal(t, "(a & b)", And(a, b).String())
	assert.Equal(t, "(a | !b)", Or(a, Not(b)).String())
	assert.Equal(t, "(a -> b)", Implies(a, b).String())
	assert.Equal(t, "(a -> _)", Implies(a, nil).String())
	assert.Equal(t, "true", And().String())
	assert.Equal(t, "false", Or().String())
}

func TestLabel_CompoundGetsName(t *testing.T) {
	door := testOwner("Door")
	f := Label(And(Var("a"), Var("b")), door, "Both")

	assert.Equal(t, "Door.Both", f.Name())
	assert.Equal(t, door, f.Owner())

	c, ok := f.(*Conjunction)
	require.True(t, ok)
	assert.Len(t, c.Operands, 2)
}

func TestLabel_DoesNotMutateOriginal(t *testing.T) {
	orig := Or(Var("a"))
	_ = Label(orig, testOwner("X"), "Y")
	assert.Equal(t, "", orig.Name())
}

func TestLabel_AtomUnchanged(t *testing.T) {
	a := Var("a")
	assert.Same(t, a, Label(a, testOwner("X"), "Y"))
}

func TestContains(t *testing.T) {
	f := Implies(And(Var("a"), Not(Var("b"))), Or(Var("c")))

	assert.True(t, Contains(f, "a"))
	assert.True(t, Contains(f, "b"))
	assert.True(t, Contains(f, "c"))
	assert.False(t, Contains(f, "d"))
	assert.False(t, Contains(nil, "a"))
}

func TestAtomNames_FirstOccurrenceOrder(t *testing.T) {
	f := Or(And(Var("b"), Var("a")), Not(Var("b")), Var("c"))
	assert.Equal(t, []string{"b", "a", "c"}, AtomNames(f))
}
