package analysis

import (
	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/local-community-search/pkg/graph"
)

// Quality describes how well a community separates from the rest of the graph
type Quality struct {
	Size           int     `json:"size" yaml:"size"`
	InternalWeight float64 `json:"internal_weight" yaml:"internal_weight"`
	CutWeight      float64 `json:"cut_weight" yaml:"cut_weight"`
	Volume         float64 `json:"volume" yaml:"volume"`
	Density        float64 `json:"density" yaml:"density"`
	Conductance    float64 `json:"conductance" yaml:"conductance"`
	Modularity     float64 `json:"modularity" yaml:"modularity"`
}

// Evaluate measures community against g. Ids missing from g are ignored.
// Modularity is computed for the two-way split {community, rest}.
func Evaluate(g *graph.Graph, members []int) Quality {
	inside := make(map[int]bool, len(members))
	for _, id := range members {
		if g.HasVertex(id) {
			inside[id] = true
		}
	}

	var q Quality
	q.Size = len(inside)
	internalEdges := 0
	for id := range inside {
		q.Volume += g.Degree(id)
		for _, neighbor := range g.Neighbors(id) {
			weight := g.EdgeWeight(id, neighbor)
			switch {
			case neighbor == id:
				q.InternalWeight += weight
				internalEdges++
			case inside[neighbor]:
				if id < neighbor {
					q.InternalWeight += weight
					internalEdges++
				}
			default:
				q.CutWeight += weight
			}
		}
	}

	if q.Size > 1 {
		q.Density = float64(internalEdges) / (float64(q.Size) * float64(q.Size-1) / 2.0)
	}

	outsideVolume := 2.0*g.TotalWeight() - q.Volume
	if denominator := min(q.Volume, outsideVolume); denominator > 0 {
		q.Conductance = q.CutWeight / denominator
	}

	q.Modularity = modularity(g, inside)
	return q
}

func modularity(g *graph.Graph, inside map[int]bool) float64 {
	if g.EdgeCount() == 0 || len(inside) == 0 {
		return 0.0
	}

	var in, out []gonumgraph.Node
	for _, id := range g.VertexIDs() {
		if inside[id] {
			in = append(in, simple.Node(int64(id)))
		} else {
			out = append(out, simple.Node(int64(id)))
		}
	}

	partition := [][]gonumgraph.Node{in}
	if len(out) > 0 {
		partition = append(partition, out)
	}
	return community.Q(ToGonum(g), partition, 1.0)
}
