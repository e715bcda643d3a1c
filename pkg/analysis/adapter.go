package analysis

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/local-community-search/pkg/graph"
)

// ToGonum copies g into a gonum weighted undirected graph. Vertex ids are
// used as gonum node ids; self-loops are skipped since gonum simple graphs
// reject them.
func ToGonum(g *graph.Graph) *simple.WeightedUndirectedGraph {
	gg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, id := range g.VertexIDs() {
		gg.AddNode(simple.Node(int64(id)))
	}
	for _, u := range g.VertexIDs() {
		for _, v := range g.Neighbors(u) {
			if v <= u {
				continue
			}
			gg.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(int64(u)),
				T: simple.Node(int64(v)),
				W: g.EdgeWeight(u, v),
			})
		}
	}
	return gg
}

// toDirected adds both directions of every undirected edge
func toDirected(undirected *simple.WeightedUndirectedGraph) *simple.WeightedDirectedGraph {
	directed := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	nodes := undirected.Nodes()
	for nodes.Next() {
		directed.AddNode(nodes.Node())
	}

	edges := undirected.WeightedEdges()
	for edges.Next() {
		edge := edges.WeightedEdge()
		directed.SetWeightedEdge(simple.WeightedEdge{F: edge.From(), T: edge.To(), W: edge.Weight()})
		directed.SetWeightedEdge(simple.WeightedEdge{F: edge.To(), T: edge.From(), W: edge.Weight()})
	}
	return directed
}
