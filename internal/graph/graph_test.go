package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type box struct{ v int }

func boxEqual(a, b *box) bool { return a.v == b.v }

func TestInsert_Deduplicates(t *testing.T) {
	g := New(boxEqual)

	a, created := g.Insert(&box{1})
	require.True(t, created)
	assert.Equal(t, 0, a.ID())

	again, created := g.Insert(&box{1})
	assert.False(t, created)
	assert.Same(t, a, again)

	b, created := g.Insert(&box{2})
	require.True(t, created)
	assert.Equal(t, 1, b.ID())
	assert.Equal(t, 2, g.Len())
}

func TestFind_EqualityEvaluatedAtLookup(t *testing.T) {
	g := New(boxEqual)
	n, _ := g.Insert(&box{1})

	// Mutate in place; the old key no longer matches, the new one does.
	n.Value.v = 5

	assert.Nil(t, g.Find(&box{1}))
	assert.Same(t, n, g.Find(&box{5}))

	_, created := g.Insert(&box{5})
	assert.False(t, created)
	assert.Equal(t, 1, g.Len())
}

func TestAddEdge(t *testing.T) {
	g := New(boxEqual)
	a, _ := g.Insert(&box{1})
	b, _ := g.Insert(&box{2})

	assert.True(t, g.AddEdge(a, b))
	assert.False(t, g.AddEdge(a, b), "repeated edge is stored once")
	assert.True(t, g.AddEdge(b, a))

	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, a.HasEdgeTo(b))
	assert.Equal(t, []*Node[*box]{b}, a.Out())
	assert.Equal(t, []*Node[*box]{b}, a.In())
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New(boxEqual)
	for _, v := range []int{3, 1, 2} {
		g.Insert(&box{v})
	}

	var got []int
	for _, n := range g.Nodes() {
		got = append(got, n.Value.v)
	}
	assert.Equal(t, []int{3, 1, 2}, got)

	var first []int
	g.Each(func(n *Node[*box]) bool {
		first = append(first, n.Value.v)
		return len(first) < 2
	})
	assert.Equal(t, []int{3, 1}, first)
}
