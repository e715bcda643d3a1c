package graph

import "sort"

// Vertex holds the adjacency of a single vertex and the strength scores
// assigned to its edges during a local search.
type Vertex struct {
	ID        int
	neighbors map[int]float64 // neighbor id -> edge weight
	strengths map[int]float64 // neighbor id -> strength
}

// NewVertex creates an isolated vertex
func NewVertex(id int) *Vertex {
	return &Vertex{
		ID:        id,
		neighbors: make(map[int]float64),
		strengths: make(map[int]float64),
	}
}

// Degree returns the weighted degree. A self-loop contributes its weight twice.
func (v *Vertex) Degree() float64 {
	degree := 0.0
	if w, ok := v.neighbors[v.ID]; ok {
		degree += w
	}
	for _, w := range v.neighbors {
		degree += w
	}
	return degree
}

// Weight returns the weight of the edge to id, or 0 if there is none
func (v *Vertex) Weight(id int) float64 {
	return v.neighbors[id]
}

// HasNeighbor reports whether an edge to id exists
func (v *Vertex) HasNeighbor(id int) bool {
	_, ok := v.neighbors[id]
	return ok
}

// NumNeighbors returns the number of adjacency entries, self-loop included
func (v *Vertex) NumNeighbors() int {
	return len(v.neighbors)
}

// NeighborIDs returns the neighbor ids in ascending order
func (v *Vertex) NeighborIDs() []int {
	ids := make([]int, 0, len(v.neighbors))
	for id := range v.neighbors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SetStrength records the strength of the edge to id
func (v *Vertex) SetStrength(id int, strength float64) {
	v.strengths[id] = strength
}

// Strength returns the strength of the edge to id, or 0 if never assigned
func (v *Vertex) Strength(id int) float64 {
	return v.strengths[id]
}

// HasStrength reports whether a strength was assigned for id
func (v *Vertex) HasStrength(id int) bool {
	_, ok := v.strengths[id]
	return ok
}

func (v *Vertex) connect(id int, weight float64) {
	v.neighbors[id] = weight
}

func (v *Vertex) disconnect(id int) {
	delete(v.neighbors, id)
	delete(v.strengths, id)
}

func (v *Vertex) clone() *Vertex {
	c := NewVertex(v.ID)
	for id, w := range v.neighbors {
		c.neighbors[id] = w
	}
	for id, s := range v.strengths {
		c.strengths[id] = s
	}
	return c
}
