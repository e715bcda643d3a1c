package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-search/pkg/graph"
	"github.com/gilchrisn/local-community-search/pkg/metrics"
	"github.com/gilchrisn/local-community-search/pkg/siwo"
)

const twoTrianglesEdges = `# two triangles joined by 3-4
1 2
2 3
3 1
3 4
4 5
5 6
6 4
`

func twoTriangles() *graph.Graph {
	g := graph.NewGraph()
	for _, pair := range [][2]int{{1, 2}, {2, 3}, {3, 1}, {3, 4}, {4, 5}, {5, 6}, {6, 4}} {
		g.AddEdge(pair[0], pair[1])
	}
	return g
}

func TestRunSearchesSeedsInOrder(t *testing.T) {
	registry := metrics.NewRegistry()
	p := NewPipeline(siwo.NewConfig(), zerolog.Nop())
	p.Metrics = registry
	p.Analyze = true

	var progress []int
	p.OnProgress = func(done, total int) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	}

	result, err := p.Run(context.Background(), twoTriangles(), []int{4, 99, 1})
	require.NoError(t, err)

	require.Len(t, result.Results, 3)
	assert.Equal(t, []int{4, 5, 6}, result.Results[0].Community)
	assert.Empty(t, result.Results[1].Community)
	assert.Equal(t, 99, result.Results[1].Seed)
	assert.Equal(t, []int{1, 2, 3}, result.Results[2].Community)
	assert.Equal(t, []int{99}, result.InvalidSeeds)
	assert.Equal(t, []int{1, 2, 3}, progress)

	require.Len(t, result.Quality, 3)
	assert.InDelta(t, 1.0/7.0, result.Quality[0].Conductance, 1e-9)

	assert.Equal(t, 6, result.GraphStats.Vertices)
	assert.Equal(t, 1, result.Summary.Empty)
	assert.Equal(t, 1.0, result.Summary.Coverage)

	assert.Equal(t, 2.0, testutil.ToFloat64(registry.SearchesTotal.WithLabelValues("A", "converged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(registry.SearchesTotal.WithLabelValues("A", "invalid_seed")))
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPipeline(siwo.NewConfig(), zerolog.Nop())
	p.OnProgress = func(done, total int) {
		if done == 1 {
			cancel()
		}
	}

	result, err := p.Run(ctx, twoTriangles(), []int{1, 4})

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Len(t, result.Results, 1)
}

func TestRunFilesWritesTextOutput(t *testing.T) {
	dir := t.TempDir()
	graphFile := filepath.Join(dir, "graph.txt")
	seedFile := filepath.Join(dir, "seeds.txt")
	outputFile := filepath.Join(dir, "output.txt")
	require.NoError(t, os.WriteFile(graphFile, []byte(twoTrianglesEdges), 0o644))
	require.NoError(t, os.WriteFile(seedFile, []byte("1\n7\n-2\n5\n"), 0o644))

	p := NewPipeline(siwo.NewConfig(), zerolog.Nop())
	result, err := p.RunFiles(context.Background(), graphFile, seedFile, outputFile)
	require.NoError(t, err)
	assert.Len(t, result.Results, 4)
	assert.Equal(t, []int{7, -2}, result.InvalidSeeds)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, "1 : [1, 2, 3] (3)\n7 : [] (0)\n-2 : [] (0)\n5 : [4, 5, 6] (3)\n", string(content))
}

func TestRunFilesReportsMissingInput(t *testing.T) {
	p := NewPipeline(siwo.NewConfig(), zerolog.Nop())

	_, err := p.RunFiles(context.Background(), filepath.Join(t.TempDir(), "none.txt"), "seeds.txt", "")
	assert.Error(t, err)
}
