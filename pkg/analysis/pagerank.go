package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"

	"github.com/gilchrisn/local-community-search/pkg/graph"
)

const (
	defaultDamping   = 0.85
	defaultTolerance = 1e-6
)

// RankedVertex is a community member with its PageRank score
type RankedVertex struct {
	ID    int     `json:"id" yaml:"id"`
	Score float64 `json:"score" yaml:"score"`
}

// RankMembers orders members by their PageRank in the whole graph, highest
// first. Ties go to the lower id.
func RankMembers(g *graph.Graph, members []int) []RankedVertex {
	if g.VertexCount() == 0 {
		return nil
	}
	scores := network.PageRank(toDirected(ToGonum(g)), defaultDamping, defaultTolerance)

	ranked := make([]RankedVertex, 0, len(members))
	for _, id := range members {
		score, ok := scores[int64(id)]
		if !ok {
			continue
		}
		ranked = append(ranked, RankedVertex{ID: id, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
