package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSearchMetrics() {
	r.SearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "siwo_searches_total",
			Help: "Total number of seed searches",
		},
		[]string{"variant", "status"}, // converged, timed_out, invalid_seed
	)

	r.SearchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "siwo_search_duration_seconds",
			Help:    "Duration of a single seed search in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
		[]string{"variant"},
	)

	r.CommunitySize = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "siwo_community_size",
			Help:    "Number of vertices in discovered communities",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"variant"},
	)

	r.SearchIterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "siwo_search_iterations",
			Help:    "Growth loop iterations per search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"variant"},
	)

	r.AmendedVerticesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "siwo_amended_vertices_total",
			Help: "Vertices added to small communities by a rescue search",
		},
	)

	r.DanglingMergedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "siwo_dangling_merged_total",
			Help: "Pendant vertices merged into communities",
		},
	)
}
