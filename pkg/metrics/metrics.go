package metrics

import (
	"time"
)

// RecordSearch records one finished seed search
func (r *Registry) RecordSearch(variant, status string, duration time.Duration, size, iterations, amended, dangling int) {
	r.SearchesTotal.WithLabelValues(variant, status).Inc()
	r.SearchDuration.WithLabelValues(variant).Observe(duration.Seconds())
	r.CommunitySize.WithLabelValues(variant).Observe(float64(size))
	r.SearchIterations.WithLabelValues(variant).Observe(float64(iterations))
	r.AmendedVerticesTotal.Add(float64(amended))
	r.DanglingMergedTotal.Add(float64(dangling))
}

// RecordInvalidSeed counts a seed that was not part of the graph
func (r *Registry) RecordInvalidSeed(variant string) {
	r.SearchesTotal.WithLabelValues(variant, "invalid_seed").Inc()
}

// RecordJob records a finished search job
func (r *Registry) RecordJob(status string, duration time.Duration) {
	r.JobsTotal.WithLabelValues(status).Inc()
	r.JobDuration.Observe(duration.Seconds())
}

// SetJobsQueued sets the number of jobs waiting for the worker
func (r *Registry) SetJobsQueued(n int) {
	r.JobsQueued.Set(float64(n))
}

// SetDatasetsLoaded sets the number of registered graphs
func (r *Registry) SetDatasetsLoaded(n int) {
	r.DatasetsLoaded.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
