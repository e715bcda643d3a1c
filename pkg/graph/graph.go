package graph

import (
	"fmt"
	"math"
	"sort"
)

// DefaultWeight is the weight of an edge added without an explicit weight
const DefaultWeight = 1.0

// Graph is a weighted undirected graph that owns its vertices by id.
// Edges and neighbors are always referenced by id, never by pointer.
type Graph struct {
	vertices map[int]*Vertex
}

// Stats summarises the shape of a graph
type Stats struct {
	Vertices    int     `json:"vertices" yaml:"vertices"`
	Edges       int     `json:"edges" yaml:"edges"`
	TotalWeight float64 `json:"total_weight" yaml:"total_weight"`
	SelfLoops   int     `json:"self_loops" yaml:"self_loops"`
	Isolated    int     `json:"isolated" yaml:"isolated"`
	MaxDegree   float64 `json:"max_degree" yaml:"max_degree"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{vertices: make(map[int]*Vertex)}
}

// AddVertex returns the vertex with the given id, creating it if needed
func (g *Graph) AddVertex(id int) *Vertex {
	if v, ok := g.vertices[id]; ok {
		return v
	}
	v := NewVertex(id)
	g.vertices[id] = v
	return v
}

// AddEdge adds an undirected edge with the default weight
func (g *Graph) AddEdge(u, v int) {
	g.AddWeightedEdge(u, v, DefaultWeight)
}

// AddWeightedEdge adds an undirected weighted edge, creating both endpoints.
// Re-adding an edge overwrites its weight. A self-loop stores a single entry.
func (g *Graph) AddWeightedEdge(u, v int, weight float64) {
	n1 := g.AddVertex(u)
	n2 := g.AddVertex(v)

	if u == v {
		n1.connect(v, weight)
		return
	}

	n1.connect(v, weight)
	n2.connect(u, weight)
}

// RemoveEdge removes the edge between u and v in both directions
func (g *Graph) RemoveEdge(u, v int) {
	n1, ok1 := g.vertices[u]
	n2, ok2 := g.vertices[v]
	if !ok1 || !ok2 {
		return
	}
	n1.disconnect(v)
	n2.disconnect(u)
}

// RemoveVertex detaches the vertex from all of its neighbors and deletes it
func (g *Graph) RemoveVertex(id int) {
	v, ok := g.vertices[id]
	if !ok {
		return
	}
	for neighbor := range v.neighbors {
		if n, exists := g.vertices[neighbor]; exists {
			n.disconnect(id)
		}
	}
	delete(g.vertices, id)
}

// RemoveSelfLoops strips every self-loop and returns how many were removed
func (g *Graph) RemoveSelfLoops() int {
	removed := 0
	for id, v := range g.vertices {
		if v.HasNeighbor(id) {
			v.disconnect(id)
			removed++
		}
	}
	return removed
}

// Vertex returns the vertex with the given id
func (g *Graph) Vertex(id int) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// HasVertex reports whether id is part of the graph
func (g *Graph) HasVertex(id int) bool {
	_, ok := g.vertices[id]
	return ok
}

// Neighbors returns the neighbor ids of a vertex in ascending order
func (g *Graph) Neighbors(id int) []int {
	v, ok := g.vertices[id]
	if !ok {
		return nil
	}
	return v.NeighborIDs()
}

// Degree returns the weighted degree of a vertex, 0 if it does not exist
func (g *Graph) Degree(id int) float64 {
	v, ok := g.vertices[id]
	if !ok {
		return 0.0
	}
	return v.Degree()
}

// EdgeWeight returns the weight of the edge between u and v, 0 if absent
func (g *Graph) EdgeWeight(u, v int) float64 {
	n, ok := g.vertices[u]
	if !ok {
		return 0.0
	}
	return n.Weight(v)
}

// HasEdge reports whether u and v are adjacent
func (g *Graph) HasEdge(u, v int) bool {
	n, ok := g.vertices[u]
	if !ok {
		return false
	}
	return n.HasNeighbor(v)
}

// CommonNeighborCount returns the size of the intersection of the neighbor
// sets of u and v, scanning the smaller set.
func (g *Graph) CommonNeighborCount(u, v int) int {
	n1, ok1 := g.vertices[u]
	n2, ok2 := g.vertices[v]
	if !ok1 || !ok2 {
		return 0
	}
	if len(n1.neighbors) > len(n2.neighbors) {
		n1, n2 = n2, n1
	}
	count := 0
	for id := range n1.neighbors {
		if _, ok := n2.neighbors[id]; ok {
			count++
		}
	}
	return count
}

// VertexCount returns the number of vertices
func (g *Graph) VertexCount() int {
	return len(g.vertices)
}

// EdgeCount returns the number of undirected edges, a self-loop counting once
func (g *Graph) EdgeCount() int {
	count := 0
	for id, v := range g.vertices {
		if v.HasNeighbor(id) {
			count++
		}
		count += len(v.neighbors)
	}
	return count / 2
}

// TotalWeight returns the sum of all undirected edge weights
func (g *Graph) TotalWeight() float64 {
	total := 0.0
	for id, v := range g.vertices {
		if w, ok := v.neighbors[id]; ok {
			total += w
		}
		for _, w := range v.neighbors {
			total += w
		}
	}
	return total / 2.0
}

// VertexIDs returns every vertex id in ascending order
func (g *Graph) VertexIDs() []int {
	ids := make([]int, 0, len(g.vertices))
	for id := range g.vertices {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Stats computes a summary of the graph
func (g *Graph) Stats() Stats {
	stats := Stats{
		Vertices:    g.VertexCount(),
		Edges:       g.EdgeCount(),
		TotalWeight: g.TotalWeight(),
	}
	for id, v := range g.vertices {
		if v.HasNeighbor(id) {
			stats.SelfLoops++
		}
		if v.NumNeighbors() == 0 {
			stats.Isolated++
		}
		if d := v.Degree(); d > stats.MaxDegree {
			stats.MaxDegree = d
		}
	}
	return stats
}

// Clone creates a deep copy of the graph
func (g *Graph) Clone() *Graph {
	clone := &Graph{vertices: make(map[int]*Vertex, len(g.vertices))}
	for id, v := range g.vertices {
		clone.vertices[id] = v.clone()
	}
	return clone
}

// Validate checks that weights are non-negative and every edge is symmetric
func (g *Graph) Validate() error {
	for id, v := range g.vertices {
		for neighbor, weight := range v.neighbors {
			if weight < 0 || math.IsNaN(weight) {
				return fmt.Errorf("invalid weight %f for edge %d-%d", weight, id, neighbor)
			}
			if neighbor == id {
				continue
			}
			n, ok := g.vertices[neighbor]
			if !ok {
				return fmt.Errorf("edge %d-%d references missing vertex %d", id, neighbor, neighbor)
			}
			if reverse, ok := n.neighbors[id]; !ok || math.Abs(reverse-weight) > 1e-9 {
				return fmt.Errorf("graph is not symmetric: edge %d->%d", id, neighbor)
			}
		}
	}
	return nil
}
