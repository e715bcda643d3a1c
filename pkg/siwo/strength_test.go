package siwo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-search/pkg/graph"
)

// twoTriangles builds {1,2,3} and {4,5,6} joined by the bridge 3-4
func twoTriangles() *graph.Graph {
	g := graph.NewGraph()
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(3, 1)
	g.AddEdge(3, 4)
	g.AddEdge(4, 5)
	g.AddEdge(5, 6)
	g.AddEdge(6, 4)
	return g
}

// cliqueWithTail builds the 4-clique {2,3,4,5} plus vertex 1 attached to 2 and 3
func cliqueWithTail() *graph.Graph {
	g := graph.NewGraph()
	for _, pair := range [][2]int{{2, 3}, {2, 4}, {2, 5}, {3, 4}, {3, 5}, {4, 5}, {1, 2}, {1, 3}} {
		g.AddEdge(pair[0], pair[1])
	}
	return g
}

func TestLocalStrengthIsSymmetric(t *testing.T) {
	g := twoTriangles()
	engine := NewStrengthEngine(g, VariantA, MaxCommonLazy)

	for _, id := range g.VertexIDs() {
		engine.LocalStrength(id)
	}

	for _, u := range g.VertexIDs() {
		for _, v := range g.Neighbors(u) {
			assert.Equal(t, engine.StrengthOf(u, v), engine.StrengthOf(v, u), "edge %d-%d", u, v)
		}
	}
}

func TestLocalStrengthVariants(t *testing.T) {
	tests := []struct {
		variant  StrengthVariant
		triangle float64
		bridge   float64
	}{
		{VariantA, 1.0, -1.0},
		{VariantB, 1.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			g := twoTriangles()
			engine := NewStrengthEngine(g, tt.variant, MaxCommonLazy)
			engine.LocalStrength(3)

			assert.Equal(t, tt.triangle, engine.StrengthOf(3, 1))
			assert.Equal(t, tt.triangle, engine.StrengthOf(3, 2))
			assert.Equal(t, tt.bridge, engine.StrengthOf(3, 4))
			assert.Equal(t, tt.bridge, engine.StrengthOf(4, 3))
		})
	}
}

func TestLocalStrengthRunsOncePerVertex(t *testing.T) {
	g := twoTriangles()
	engine := NewStrengthEngine(g, VariantA, MaxCommonLazy)

	engine.LocalStrength(1)
	require.True(t, engine.IsComputed(1))

	v, _ := g.Vertex(1)
	v.SetStrength(2, 42.0)
	engine.LocalStrength(1)

	assert.Equal(t, 42.0, engine.StrengthOf(1, 2))
	assert.Equal(t, []int{1}, engine.ComputedVertices())
}

func TestLocalStrengthIgnoresUnknownVertex(t *testing.T) {
	engine := NewStrengthEngine(twoTriangles(), VariantA, MaxCommonLazy)

	engine.LocalStrength(99)

	assert.False(t, engine.IsComputed(99))
	assert.Empty(t, engine.ComputedVertices())
	assert.Equal(t, unresolved, engine.MaxCommonNeighbors(99))
}

func TestMaxCommonNeighborPolicies(t *testing.T) {
	t.Run("lazy reads the partially resolved maximum", func(t *testing.T) {
		engine := NewStrengthEngine(cliqueWithTail(), VariantA, MaxCommonLazy)
		engine.LocalStrength(1)

		assert.Equal(t, 1, engine.MaxCommonNeighbors(2))
		assert.InDelta(t, 1.0, engine.StrengthOf(1, 2), 1e-9)
	})

	t.Run("eager resolves the neighbor first", func(t *testing.T) {
		engine := NewStrengthEngine(cliqueWithTail(), VariantA, MaxCommonEager)
		engine.LocalStrength(1)

		assert.Equal(t, 3, engine.MaxCommonNeighbors(2))
		assert.InDelta(t, 1.0/3.0, engine.StrengthOf(1, 2), 1e-9)
	})
}

func TestMaxCommonNeighborsGrowsMonotonically(t *testing.T) {
	g := cliqueWithTail()
	engine := NewStrengthEngine(g, VariantA, MaxCommonLazy)

	last := engine.MaxCommonNeighbors(2)
	for _, id := range g.VertexIDs() {
		engine.LocalStrength(id)
		current := engine.MaxCommonNeighbors(2)
		assert.GreaterOrEqual(t, current, last)
		last = current
	}
	assert.Equal(t, 3, last)
}

func TestCommonNeighborsCache(t *testing.T) {
	g := twoTriangles()
	engine := NewStrengthEngine(g, VariantA, MaxCommonLazy)

	assert.Equal(t, 1, engine.CommonNeighbors(1, 2))
	assert.Equal(t, 1, engine.CommonNeighbors(2, 1))
	assert.Equal(t, 1, engine.MaxCommonNeighbors(1))

	// non-adjacent pairs are answered but never cached
	assert.Equal(t, 1, engine.CommonNeighbors(1, 4))
	assert.Equal(t, 1, engine.MaxCommonNeighbors(1))
	assert.Equal(t, 0.0, engine.StrengthOf(1, 4))
}
