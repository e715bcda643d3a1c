package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-search/pkg/graph"
	"github.com/gilchrisn/local-community-search/pkg/siwo"
)

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

func TestToGonumCopiesEdges(t *testing.T) {
	g := twoTriangles()
	g.AddWeightedEdge(1, 6, 2.5)
	g.AddEdge(2, 2)

	gg := ToGonum(g)

	assert.Equal(t, 6, gg.Nodes().Len())
	assert.Equal(t, 8, gg.Edges().Len())
	w, ok := gg.Weight(6, 1)
	require.True(t, ok)
	assert.Equal(t, 2.5, w)
}

func TestEvaluateTriangle(t *testing.T) {
	q := Evaluate(twoTriangles(), []int{1, 2, 3})

	assert.Equal(t, 3, q.Size)
	assert.Equal(t, 3.0, q.InternalWeight)
	assert.Equal(t, 1.0, q.CutWeight)
	assert.Equal(t, 7.0, q.Volume)
	assert.Equal(t, 1.0, q.Density)
	assert.InDelta(t, 1.0/7.0, q.Conductance, 1e-9)
	assert.InDelta(t, 5.0/14.0, q.Modularity, 1e-9)
}

func TestEvaluateWholeGraphAndMissingIDs(t *testing.T) {
	g := twoTriangles()

	whole := Evaluate(g, []int{1, 2, 3, 4, 5, 6, 99})
	assert.Equal(t, 6, whole.Size)
	assert.Equal(t, 0.0, whole.CutWeight)
	assert.Equal(t, 0.0, whole.Conductance)

	empty := Evaluate(graph.NewGraph(), []int{1})
	assert.Equal(t, 0, empty.Size)
	assert.Equal(t, 0.0, empty.Modularity)
}

func TestRankMembersPutsHubFirst(t *testing.T) {
	g := graph.NewGraph()
	for leaf := 1; leaf <= 5; leaf++ {
		g.AddEdge(0, leaf)
	}

	ranked := RankMembers(g, []int{3, 0, 1, 42})

	require.Len(t, ranked, 3)
	assert.Equal(t, 0, ranked[0].ID)
	assert.ElementsMatch(t, []int{1, 3}, []int{ranked[1].ID, ranked[2].ID})
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.InDelta(t, ranked[1].Score, ranked[2].Score, 1e-9)

	assert.Nil(t, RankMembers(graph.NewGraph(), []int{1}))
}

func TestSummarize(t *testing.T) {
	g := twoTriangles()
	results := []siwo.Result{
		{Seed: 1, Community: []int{1, 2, 3}},
		{Seed: 4, Community: []int{4, 5, 6}, TimedOut: true},
		{Seed: 9},
	}

	summary := Summarize(g, results)

	assert.Equal(t, 3, summary.Searches)
	assert.Equal(t, 1, summary.TimedOut)
	assert.Equal(t, 1, summary.Empty)
	assert.Equal(t, 0, summary.MinSize)
	assert.Equal(t, 3, summary.MaxSize)
	assert.InDelta(t, 2.0, summary.MeanSize, 1e-9)
	assert.InDelta(t, 1.7320508, summary.StdDevSize, 1e-6)
	assert.Equal(t, 1.0, summary.Coverage)

	assert.Equal(t, Summary{}, Summarize(g, nil))
	assert.Equal(t, 0.0, Summarize(g, results[:1]).StdDevSize)
}
