package siwo

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/gilchrisn/local-community-search/pkg/graph"
)

// unresolved is the max common-neighbor value of a vertex before any of its
// pairs has been counted.
const unresolved = -1

// StrengthEngine computes and caches the common-neighbor overlap of adjacent
// vertices and turns it into a symmetric strength score on each edge.
//
// Counts are resolved lazily and stored under both endpoints. The per-vertex
// maximum only grows as more pairs resolve, so a vertex read before its own
// pass may report a maximum below its final value.
type StrengthEngine struct {
	graph   *graph.Graph
	variant StrengthVariant
	policy  MaxCommonPolicy

	commonNeighbors map[int]map[int]int
	maxCommon       map[int]int
	computed        mapset.Set[int]
}

// NewStrengthEngine creates an engine with empty caches
func NewStrengthEngine(g *graph.Graph, variant StrengthVariant, policy MaxCommonPolicy) *StrengthEngine {
	return &StrengthEngine{
		graph:           g,
		variant:         variant,
		policy:          policy,
		commonNeighbors: make(map[int]map[int]int),
		maxCommon:       make(map[int]int),
		computed:        mapset.NewThreadUnsafeSet[int](),
	}
}

// Variant returns the scoring variant
func (e *StrengthEngine) Variant() StrengthVariant {
	return e.variant
}

// LocalStrength assigns a strength to every edge of id. It runs at most once
// per vertex for the lifetime of the engine.
func (e *StrengthEngine) LocalStrength(id int) {
	if e.computed.Contains(id) {
		return
	}
	vertex, ok := e.graph.Vertex(id)
	if !ok {
		return
	}

	e.resolve(id)
	maxU := e.MaxCommonNeighbors(id)

	for _, neighborID := range vertex.NeighborIDs() {
		neighbor, ok := e.graph.Vertex(neighborID)
		if !ok {
			continue
		}
		maxV := e.MaxCommonNeighbors(neighborID)
		cn := e.commonNeighbors[id][neighborID]

		strength := e.score(cn, maxU, maxV)
		vertex.SetStrength(neighborID, strength)
		neighbor.SetStrength(id, strength)
	}
	e.computed.Add(id)
}

// score combines the two normalized overlaps according to the variant
func (e *StrengthEngine) score(cn, maxU, maxV int) float64 {
	s1, s2 := 0.0, 0.0
	if maxU != 0 {
		s1 = float64(cn) / float64(maxU)
	}
	if maxV != 0 {
		s2 = float64(cn) / float64(maxV)
	}
	if e.variant == VariantB {
		return (s1 + s2) / 2.0
	}
	return s1 + s2 - 1.0
}

// resolve counts the common neighbors of id with each of its neighbors that
// is not cached yet, raising the maximum of both endpoints.
func (e *StrengthEngine) resolve(id int) {
	e.ensure(id)
	vertex, ok := e.graph.Vertex(id)
	if !ok {
		return
	}

	for _, neighborID := range vertex.NeighborIDs() {
		if _, cached := e.commonNeighbors[id][neighborID]; cached {
			continue
		}
		e.record(id, neighborID, e.graph.CommonNeighborCount(id, neighborID))
	}
}

// record caches count under both endpoints and raises their maxima
func (e *StrengthEngine) record(u, v, count int) {
	e.ensure(u)
	e.ensure(v)
	e.commonNeighbors[u][v] = count
	e.commonNeighbors[v][u] = count
	if count > e.maxCommon[u] {
		e.maxCommon[u] = count
	}
	if count > e.maxCommon[v] {
		e.maxCommon[v] = count
	}
}

func (e *StrengthEngine) ensure(id int) {
	if _, ok := e.commonNeighbors[id]; !ok {
		e.commonNeighbors[id] = make(map[int]int)
		e.maxCommon[id] = unresolved
	}
}

// MaxCommonNeighbors returns the largest common-neighbor count recorded for
// id. Under MaxCommonLazy the value may be stale; under MaxCommonEager all of
// id's pairs are resolved first.
func (e *StrengthEngine) MaxCommonNeighbors(id int) int {
	if e.policy == MaxCommonEager {
		e.resolve(id)
	}
	if value, ok := e.maxCommon[id]; ok {
		return value
	}
	return unresolved
}

// CommonNeighbors returns the cached common-neighbor count of u and v,
// computing and caching it on a miss.
func (e *StrengthEngine) CommonNeighbors(u, v int) int {
	if count, ok := e.commonNeighbors[u][v]; ok {
		return count
	}
	if !e.graph.HasEdge(u, v) {
		return e.graph.CommonNeighborCount(u, v)
	}
	count := e.graph.CommonNeighborCount(u, v)
	e.record(u, v, count)
	return count
}

// StrengthOf returns the strength stored on the edge u-v, or 0 if none
func (e *StrengthEngine) StrengthOf(u, v int) float64 {
	vertex, ok := e.graph.Vertex(u)
	if !ok {
		return 0.0
	}
	return vertex.Strength(v)
}

// IsComputed reports whether LocalStrength already ran for id
func (e *StrengthEngine) IsComputed(id int) bool {
	return e.computed.Contains(id)
}

// ComputedVertices returns the ids whose local strength has been assigned
func (e *StrengthEngine) ComputedVertices() []int {
	ids := e.computed.ToSlice()
	sort.Ints(ids)
	return ids
}
