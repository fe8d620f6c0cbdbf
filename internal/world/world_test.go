package world

import (
	"io"
	"log/slog"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verity/internal/compiler"
	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/logic"
)

const doorWorld = `
entity: Door: attributes: ["IsLocked", "IsOpen"]
entity: Key: attributes: ["Held"]

rule: unlock: {
	if:   "Key.Held"
	then: {not: "Door.IsLocked"}
}

rule: open_needs_unlocked: {
	if:    "Door.IsOpen"
	then:  {not: "Door.IsLocked"}
	owner: "Door"
	name:  "CanOpen"
}

formula: sealed: {
	owner: "Door"
	name:  "Sealed"
	expr: {all: ["Door.IsLocked", {not: "Door.IsOpen"}]}
}

goal: Door: IsOpen: true

initial: "Door.IsLocked": true
`

const flipFlopWorld = `
entity: X: attributes: []
formula: f: {owner: "X", name: "F", expr: {not: "X.G"}}
formula: g: {owner: "X", name: "G", expr: "X.F"}
`

func compile(t *testing.T, src string) *compiler.WorldSpec {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	spec, err := compiler.CompileWorld(v)
	require.NoError(t, err)
	return spec
}

func build(t *testing.T, src string, opts ...engine.Option) *World {
	t.Helper()
	opts = append([]engine.Option{
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithSessionIDs(engine.NewFixedGenerator("session-1")),
	}, opts...)
	w, err := Build(compile(t, src), opts...)
	require.NoError(t, err)
	return w
}

type note struct {
	Name  string
	Value logic.Truth
}

func TestBuild_Registers(t *testing.T) {
	w := build(t, doorWorld)
	e := w.Engine

	assert.Equal(t, []string{"Door", "Key"}, e.Entities())
	assert.Equal(t, []string{"unlock", "Door.CanOpen"}, e.RuleIDs())
	assert.Equal(t, []string{"Door.Sealed"}, e.TrackedIDs())
	assert.Equal(t, []string{"Door"}, e.GoalPrefixes())

	f, ok := e.Formula("Door.Sealed")
	require.True(t, ok)
	assert.Equal(t, "(Door.IsLocked & !Door.IsOpen)", f.String())

	ent, ok := w.Entity("Door")
	require.True(t, ok)
	assert.Equal(t, []string{"IsLocked", "IsOpen"}, ent.Attributes())
	assert.Len(t, w.Entities(), 2)
	_, ok = w.Entity("Window")
	assert.False(t, ok)
}

func TestBuild_SeedsInitialWithoutTransition(t *testing.T) {
	w := build(t, doorWorld)

	assert.Equal(t, logic.True, w.Engine.Value("Door.IsLocked"))
	assert.Equal(t, 1, w.Engine.NodeCount())
	assert.Equal(t, logic.Unknown, w.Engine.Value("Door.Sealed"), "initial facts fire no rules")
}

func TestBuild_PlayToWin(t *testing.T) {
	w := build(t, doorWorld)

	r, err := w.Report("Door.IsLocked", false)
	require.NoError(t, err)
	assert.True(t, r.Changed)
	assert.False(t, r.Won)
	assert.Equal(t, logic.False, w.Engine.Value("Door.Sealed"))

	r, err = w.Report("Door.IsOpen", true)
	require.NoError(t, err)
	assert.True(t, r.Satisfied)
	assert.True(t, r.Won)
}

func TestBuild_ContrapositiveThroughWorld(t *testing.T) {
	w := build(t, doorWorld)

	// Door stays locked: the open rule drives IsOpen false.
	_, err := w.Report("Key.Held", true)
	require.NoError(t, err)
	assert.Equal(t, logic.False, w.Engine.Value("Door.IsOpen"))
	assert.Equal(t, logic.True, w.Engine.Value("Door.Sealed"))
}

func TestListenAll(t *testing.T) {
	w := build(t, doorWorld)
	var notes []note
	w.ListenAll(func(name string, v logic.Truth) {
		notes = append(notes, note{name, v})
	})

	_, err := w.Report("Door.IsLocked", false)
	require.NoError(t, err)

	assert.ElementsMatch(t, []note{
		{"Door.IsLocked", logic.False},
		{"Door.CanOpen", logic.True},
		{"Door.Sealed", logic.False},
	}, notes)
}

func TestBuild_FlipFlop(t *testing.T) {
	spec := compile(t, flipFlopWorld)
	assert.Len(t, compiler.AnalyzeCycles(spec), 1)

	w := build(t, flipFlopWorld, engine.WithFixpoint())
	_, err := w.Report("X.G", true)
	require.Error(t, err)
	assert.True(t, engine.IsOscillationError(err))
}

func TestBuild_FlipFlopSingleSweep(t *testing.T) {
	w := build(t, flipFlopWorld)
	r, err := w.Report("X.G", true)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Sweeps)
}

func TestBuild_RejectsInvalid(t *testing.T) {
	spec := compile(t, `
entity: Door: attributes: ["IsOpen"]
rule: r: then: "Door.IsAjar"
`)
	_, err := Build(spec)
	require.Error(t, err)

	var verr compiler.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, compiler.ErrUnknownReference, verr.Code)
}
