package engine

import (
	"log/slog"

	"github.com/roach88/verity/internal/graph"
	"github.com/roach88/verity/internal/logic"
)

// Engine is the state engine for one game session.
//
// It owns the registries (formulas, rules, tracked formulas, goals,
// entities), the graph of every world-state visited, and the pointer to the
// current one. New is the session's init: a fresh engine has an empty root
// node as current.
//
// Engine is not safe for concurrent use. Every public method runs to
// completion before the next may start; use a Driver to feed reports from
// several goroutines.
//
// INVARIANTS:
//   - formula ids are unique
//   - rules and tracked formulas are subsets of the formula registry
//   - current is always a node of the state graph
//   - nodes are never removed; a node's assignment only gains names
//     (filled in place) or changes through transitions to other nodes
type Engine struct {
	logger    *slog.Logger
	listeners []Listener
	idGen     SessionIDGenerator
	session   string
	clock     *Clock // event seq
	ids       *Clock // anonymous formula ids

	fixpoint       bool
	maxTransitions int
	quota          *QuotaEnforcer
	oscillation    *oscillationDetector

	entities     map[string]logic.Owner
	entityOrder  []string
	formulas     map[string]logic.Formula
	formulaOrder []string
	rules        []string // Implication ids in registration order
	tracked      []string // named compound non-rule ids in registration order

	goals        map[string]*logic.Assignment
	goalOrder    []string
	goalFormulas map[string]logic.Formula // cache, invalidated per prefix

	states  *graph.Graph[*logic.Assignment]
	current *graph.Node[*logic.Assignment]
	interp  *logic.Interpretation

	satisfied bool // goals satisfied after the last report
	won       bool // latched on the first satisfied report
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithListener adds an observer. Listeners are called in the order added.
func WithListener(l Listener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, l)
	}
}

// WithFixpoint repeats the propagation sweep until the current world-state
// stops changing. The default is one sweep per report.
func WithFixpoint() Option {
	return func(e *Engine) {
		e.fixpoint = true
	}
}

// WithMaxTransitions sets the transition quota per report.
//
// Default: 1000 (DefaultMaxTransitions).
func WithMaxTransitions(n int) Option {
	return func(e *Engine) {
		e.maxTransitions = n
	}
}

// WithSessionIDs sets the session id source. Default: UUIDv7Generator.
func WithSessionIDs(g SessionIDGenerator) Option {
	return func(e *Engine) {
		e.idGen = g
	}
}

// New creates an engine with an empty root world-state as current.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:         slog.Default(),
		idGen:          UUIDv7Generator{},
		clock:          NewClock(),
		ids:            NewClock(),
		maxTransitions: DefaultMaxTransitions,
		oscillation:    newOscillationDetector(),
		entities:       make(map[string]logic.Owner),
		formulas:       make(map[string]logic.Formula),
		goals:          make(map[string]*logic.Assignment),
		goalFormulas:   make(map[string]logic.Formula),
		states:         graph.New((*logic.Assignment).Equal),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.quota = NewQuotaEnforcer(e.maxTransitions)
	e.session = e.idGen.Generate()
	e.current, _ = e.states.Insert(logic.NewAssignment())
	e.interp = logic.NewInterpretation(e.current.Value)

	e.logger.Debug("session started",
		"session", e.session,
		"fixpoint", e.fixpoint,
		"max_transitions", e.maxTransitions,
	)
	e.emit(Event{Kind: EventNodeCreated, From: -1, To: e.current.ID(), State: map[string]bool{}})

	return e
}

// Session returns the session id.
func (e *Engine) Session() string {
	return e.session
}

// Current returns a copy of the current world-state.
func (e *Engine) Current() *logic.Assignment {
	return e.current.Value.Clone()
}

// CurrentNode returns the id of the current node.
func (e *Engine) CurrentNode() int {
	return e.current.ID()
}

// Value returns the current truth value of name. Unknown names are Unknown.
func (e *Engine) Value(name string) logic.Truth {
	return e.current.Value.Value(name)
}

// NodeCount returns the number of world-states in the graph.
func (e *Engine) NodeCount() int {
	return e.states.Len()
}

// EdgeCount returns the number of distinct transitions recorded.
func (e *Engine) EdgeCount() int {
	return e.states.EdgeCount()
}

// NodeView is a read-only copy of one graph node.
type NodeView struct {
	ID    int
	State *logic.Assignment
	Out   []int
}

// Nodes returns copies of every node in insertion order.
func (e *Engine) Nodes() []NodeView {
	nodes := e.states.Nodes()
	out := make([]NodeView, len(nodes))
	for i, n := range nodes {
		succ := n.Out()
		ids := make([]int, len(succ))
		for j, s := range succ {
			ids[j] = s.ID()
		}
		out[i] = NodeView{ID: n.ID(), State: n.Value.Clone(), Out: ids}
	}
	return out
}

// Formula looks up a registered formula by id.
func (e *Engine) Formula(id string) (logic.Formula, bool) {
	f, ok := e.formulas[id]
	return f, ok
}

// FormulaIDs returns every formula id in registration order.
func (e *Engine) FormulaIDs() []string {
	return append([]string(nil), e.formulaOrder...)
}

// RuleIDs returns the rule ids in registration order.
func (e *Engine) RuleIDs() []string {
	return append([]string(nil), e.rules...)
}

// TrackedIDs returns the tracked formula ids in registration order.
func (e *Engine) TrackedIDs() []string {
	return append([]string(nil), e.tracked...)
}

// Won reports whether the goals have been satisfied at any point this session.
func (e *Engine) Won() bool {
	return e.won
}
