package compiler

import (
	"fmt"
	"slices"
	"strings"
)

// CycleWarning represents a potential feedback loop between rules and
// tracked formulas.
//
// Cycles are warnings, not errors, because they may be intentional:
//   - Mutually reinforcing facts (A ⇒ B, B ⇒ A)
//   - Contrapositive chains that settle after one sweep
//
// A cycle through a negation can make the world-state oscillate. The engine
// bounds that at runtime with the transition quota.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["rule-a", "rule-b", "rule-a"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeCycles performs static cycle analysis on the rules and tracked
// formulas of a world.
//
// The algorithm:
//  1. Build a read → write dependency graph: X → Y when something X may set
//     is read by Y
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a potential cycle warning
//
// A rule reads every name in its if and then expressions (the contrapositive
// reads the consequent) and writes the names in its then expression plus its
// own label. A tracked formula reads its expression and writes its label.
//
// A DAG (no cycles) returns an empty warning list.
func AnalyzeCycles(spec *WorldSpec) []CycleWarning {
	if spec == nil || len(spec.Rules)+len(spec.Formulas) == 0 {
		return []CycleWarning{}
	}

	graph := buildDependencyGraph(spec)
	sccs := tarjanSCC(graph)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// dependencyGraph maps id → ids whose inputs it may change.
// order keeps node iteration deterministic.
type dependencyGraph struct {
	order []string
	edges map[string][]string
}

type deps struct {
	id     string
	reads  []string
	writes []string
	// triggers are the reads that can re-fire the node itself.
	triggers []string
}

func buildDependencyGraph(spec *WorldSpec) dependencyGraph {
	var nodes []deps
	for _, r := range spec.Rules {
		d := deps{
			id:       r.ID,
			reads:    append(r.If.Atoms(), r.Then.Atoms()...),
			writes:   r.Then.Atoms(),
			triggers: r.If.Atoms(),
		}
		if q := r.QualifiedName(); q != "" {
			d.writes = append(d.writes, q)
		}
		nodes = append(nodes, d)
	}
	for _, f := range spec.Formulas {
		atoms := f.Expr.Atoms()
		nodes = append(nodes, deps{
			id:       f.ID,
			reads:    atoms,
			writes:   []string{f.QualifiedName()},
			triggers: atoms,
		})
	}

	// name → ids reading it, in node order
	readers := make(map[string][]string)
	for _, n := range nodes {
		for _, name := range n.reads {
			readers[name] = append(readers[name], n.id)
		}
	}

	graph := dependencyGraph{edges: make(map[string][]string)}
	for _, n := range nodes {
		graph.order = append(graph.order, n.id)
		targets := []string{}
		for _, name := range n.writes {
			for _, reader := range readers[name] {
				if reader == n.id {
					// Writing its own consequent does not re-fire a rule;
					// writing its own trigger does.
					if !slices.Contains(n.triggers, name) {
						continue
					}
				}
				if !slices.Contains(targets, reader) {
					targets = append(targets, reader)
				}
			}
		}
		graph.edges[n.id] = targets
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	return slices.Contains(graph.edges[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of ids.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		// Set the depth index for v
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		// Consider successors of v
		for _, w := range graph.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range graph.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
//
// For self-loops, the path is [id, id]. For multi-node cycles the path
// starts at the earliest declared member.
func cycleSCCToWarning(scc []string, graph dependencyGraph) CycleWarning {
	if len(scc) == 1 {
		id := scc[0]
		return CycleWarning{
			Path:    []string{id, id},
			Message: fmt.Sprintf("Self-triggering rule detected: %s → %s", id, id),
			Level:   "warning",
		}
	}

	ordered := make([]string, 0, len(scc))
	for _, id := range graph.order {
		if slices.Contains(scc, id) {
			ordered = append(ordered, id)
		}
	}
	path := reconstructCyclePath(ordered, graph)

	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Potential cycle detected: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at first node in SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph.edges[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
