package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/local-community-search/pkg/graph"
	"github.com/gilchrisn/local-community-search/pkg/siwo"
)

// Summary aggregates a batch of search results
type Summary struct {
	Searches   int     `json:"searches" yaml:"searches"`
	TimedOut   int     `json:"timed_out" yaml:"timed_out"`
	Empty      int     `json:"empty" yaml:"empty"`
	MeanSize   float64 `json:"mean_size" yaml:"mean_size"`
	StdDevSize float64 `json:"stddev_size" yaml:"stddev_size"`
	MinSize    int     `json:"min_size" yaml:"min_size"`
	MaxSize    int     `json:"max_size" yaml:"max_size"`
	Coverage   float64 `json:"coverage" yaml:"coverage"` // fraction of vertices in at least one community
}

// Summarize computes size statistics over results
func Summarize(g *graph.Graph, results []siwo.Result) Summary {
	summary := Summary{Searches: len(results)}
	if len(results) == 0 {
		return summary
	}

	sizes := make([]float64, len(results))
	covered := make(map[int]struct{})
	summary.MinSize = results[0].Size()
	for i, result := range results {
		size := result.Size()
		sizes[i] = float64(size)
		if size < summary.MinSize {
			summary.MinSize = size
		}
		if size > summary.MaxSize {
			summary.MaxSize = size
		}
		if size == 0 {
			summary.Empty++
		}
		if result.TimedOut {
			summary.TimedOut++
		}
		for _, id := range result.Community {
			covered[id] = struct{}{}
		}
	}

	summary.MeanSize = stat.Mean(sizes, nil)
	if len(sizes) > 1 {
		summary.StdDevSize = stat.StdDev(sizes, nil)
	}
	if n := g.VertexCount(); n > 0 {
		summary.Coverage = float64(len(covered)) / float64(n)
	}
	return summary
}
