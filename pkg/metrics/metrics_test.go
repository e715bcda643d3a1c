package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)

	assert.NotNil(t, r.SearchesTotal)
	assert.NotNil(t, r.CommunitySize)
	assert.NotNil(t, r.JobsTotal)
	assert.NotNil(t, r.HTTPRequestsTotal)
	assert.NotNil(t, r.GetPrometheusRegistry())
}

func TestDefaultRegistry(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}

func TestRecordSearch(t *testing.T) {
	r := NewRegistry()

	r.RecordSearch("A", "converged", 5*time.Millisecond, 4, 3, 1, 2)
	r.RecordSearch("A", "timed_out", 2*time.Second, 1, 0, 0, 0)
	r.RecordInvalidSeed("A")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.SearchesTotal.WithLabelValues("A", "converged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SearchesTotal.WithLabelValues("A", "timed_out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SearchesTotal.WithLabelValues("A", "invalid_seed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.AmendedVerticesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.DanglingMergedTotal))

	histogram, err := r.CommunitySize.GetMetricWithLabelValues("A")
	require.NoError(t, err)

	var metric dto.Metric
	require.NoError(t, histogram.(prometheus.Metric).Write(&metric))
	assert.Equal(t, uint64(2), metric.Histogram.GetSampleCount())
	assert.Equal(t, 5.0, metric.Histogram.GetSampleSum())
}

func TestJobAndDatasetGauges(t *testing.T) {
	r := NewRegistry()

	r.SetDatasetsLoaded(3)
	r.SetJobsQueued(2)
	r.RecordJob("completed", time.Second)
	r.RecordJob("failed", time.Second)
	r.RecordJob("completed", time.Second)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.DatasetsLoaded))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.JobsQueued))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.JobsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.JobsTotal.WithLabelValues("failed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("GET", "/api/v1/health", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `siwo_http_requests_total{method="GET",path="/api/v1/health",status="200"} 1`)
}
