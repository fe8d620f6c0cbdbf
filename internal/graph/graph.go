// Package graph is a directed, append-only graph over arbitrary values,
// deduplicated by caller-supplied structural equality.
//
// Nodes and edges are only ever added. Equality is evaluated at lookup time,
// never cached: a node whose value is mutated in place after insertion is
// matched against its new content by later lookups. The state engine relies on
// this when it fills a previously unknown name into an existing world-state.
package graph

// Node wraps one value. Value is a pointer-like handle the graph does not copy;
// callers may mutate what it points to.
type Node[T any] struct {
	Value T

	id  int
	out []*Node[T]
	in  []*Node[T]
}

// ID is the node's insertion index, starting at 0.
func (n *Node[T]) ID() int { return n.id }

// Out returns the nodes reachable by one edge from n, in edge insertion order.
func (n *Node[T]) Out() []*Node[T] { return append([]*Node[T](nil), n.out...) }

// In returns the nodes with an edge into n, in edge insertion order.
func (n *Node[T]) In() []*Node[T] { return append([]*Node[T](nil), n.in...) }

// HasEdgeTo reports whether n already has an edge to m.
func (n *Node[T]) HasEdgeTo(m *Node[T]) bool {
	for _, o := range n.out {
		if o == m {
			return true
		}
	}
	return false
}

// Graph holds nodes in insertion order.
//
// Graph is not safe for concurrent use.
type Graph[T any] struct {
	equal func(a, b T) bool
	nodes []*Node[T]
	edges int
}

// New creates an empty graph using equal for deduplication.
func New[T any](equal func(a, b T) bool) *Graph[T] {
	return &Graph[T]{equal: equal}
}

// Find returns the first node whose value equals v, or nil.
func (g *Graph[T]) Find(v T) *Node[T] {
	for _, n := range g.nodes {
		if g.equal(n.Value, v) {
			return n
		}
	}
	return nil
}

// Insert returns the node holding a value equal to v, adding one if none
// exists. created reports whether a new node was added.
func (g *Graph[T]) Insert(v T) (node *Node[T], created bool) {
	if n := g.Find(v); n != nil {
		return n, false
	}
	n := &Node[T]{Value: v, id: len(g.nodes)}
	g.nodes = append(g.nodes, n)
	return n, true
}

// AddEdge records from→to. Repeated edges are stored once.
// Reports whether the edge is new.
func (g *Graph[T]) AddEdge(from, to *Node[T]) bool {
	if from.HasEdgeTo(to) {
		return false
	}
	from.out = append(from.out, to)
	to.in = append(to.in, from)
	g.edges++
	return true
}

// Nodes returns every node in insertion order. The slice is a copy; the nodes
// are shared.
func (g *Graph[T]) Nodes() []*Node[T] {
	return append([]*Node[T](nil), g.nodes...)
}

// Each calls fn for every node in insertion order until fn returns false.
func (g *Graph[T]) Each(fn func(*Node[T]) bool) {
	for _, n := range g.nodes {
		if !fn(n) {
			return
		}
	}
}

// Len returns the number of nodes.
func (g *Graph[T]) Len() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph[T]) EdgeCount() int { return g.edges }
