// Package engine implements the game-progression state engine.
//
// The engine tracks the truth of every registered fact across the game world,
// infers secondary facts from rules, remembers every distinct world-state it
// has visited, and reports when the authored goals hold.
//
// ARCHITECTURE:
//
// Session Context:
// One Engine is one session. New creates the registries and an empty root
// world-state; entities register atoms, rules, tracked formulas and goals
// during setup, then report fact changes during play.
//
// State Graph:
// Every visited world-state is a node of an append-only graph. A changed fact
// moves the current pointer to a reusable node (the most similar one that
// does not contradict the change) or to a newly synthesised one. Nodes are
// deduplicated by structural equality evaluated at lookup time, and a node
// may gain previously unknown names in place.
//
// Propagation:
// After every report, one sweep evaluates each rule in registration order
// (forward inference, or the contrapositive when the consequent is false),
// stores the value of each tracked formula, pushes the derived facts into
// the graph, notifies owners and checks the goals. WithFixpoint repeats the
// sweep until nothing changes.
//
// Termination:
// A single sweep always terminates. In fixpoint mode a rule set can flip
// facts back and forth; a revisited state stops propagation with
// *OscillationError, and the transition quota (WithMaxTransitions) bounds
// every report with *QuotaError.
//
// Concurrency:
// The Engine is single-threaded. Driver serialises reports from many
// goroutines onto one engine.
package engine
