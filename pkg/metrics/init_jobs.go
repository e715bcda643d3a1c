package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initJobMetrics() {
	r.DatasetsLoaded = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "siwo_datasets_loaded",
			Help: "Number of graphs currently registered",
		},
	)

	r.JobsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "siwo_jobs_total",
			Help: "Total number of search jobs by final status",
		},
		[]string{"status"}, // completed, failed
	)

	r.JobsQueued = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "siwo_jobs_queued",
			Help: "Search jobs waiting for the worker",
		},
	)

	r.JobDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siwo_job_duration_seconds",
			Help:    "Duration of search jobs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
}
