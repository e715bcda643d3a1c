package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-search/pkg/metrics"
	"github.com/gilchrisn/local-community-search/pkg/service"
	"github.com/gilchrisn/local-community-search/pkg/siwo"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := metrics.NewRegistry()
	datasets := service.NewDatasetService(registry)
	jobs := service.NewJobService(datasets, siwo.NewConfig(), registry)

	server := httptest.NewServer(NewRouter(NewHandlers(datasets, jobs), registry, []string{"*"}))
	t.Cleanup(func() {
		server.Close()
		jobs.Close()
	})
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func createTriangles(t *testing.T, baseURL string) service.Dataset {
	t.Helper()
	status, env := doJSON(t, http.MethodPost, baseURL+"/api/v1/datasets", CreateDatasetRequest{
		Name:  "triangles",
		Edges: [][]float64{{1, 2}, {2, 3}, {3, 1}, {3, 4}, {4, 5}, {5, 6}, {6, 4}},
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	var dataset service.Dataset
	require.NoError(t, json.Unmarshal(env.Data, &dataset))
	return dataset
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	status, env := doJSON(t, http.MethodGet, server.URL+"/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestDatasetEndpoints(t *testing.T) {
	server := newTestServer(t)
	dataset := createTriangles(t, server.URL)

	assert.Equal(t, 6, dataset.Stats.Vertices)
	assert.Equal(t, 7, dataset.Stats.Edges)

	status, env := doJSON(t, http.MethodGet, server.URL+"/api/v1/datasets/"+dataset.ID, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = doJSON(t, http.MethodGet, server.URL+"/api/v1/datasets", nil)
	assert.Equal(t, http.StatusOK, status)
	var listed []service.Dataset
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)

	status, _ = doJSON(t, http.MethodDelete, server.URL+"/api/v1/datasets/"+dataset.ID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = doJSON(t, http.MethodGet, server.URL+"/api/v1/datasets/"+dataset.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
}

func TestCreateDatasetRejectsBadInput(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"no source", CreateDatasetRequest{Name: "empty"}},
		{"short edge", CreateDatasetRequest{Name: "bad", Edges: [][]float64{{1}}}},
		{"fractional id", CreateDatasetRequest{Name: "bad", Edges: [][]float64{{1.5, 2}}}},
		{"missing file", CreateDatasetRequest{Name: "bad", Path: "/does/not/exist.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doJSON(t, http.MethodPost, server.URL+"/api/v1/datasets", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.False(t, env.Success)
		})
	}
}

func TestSearchJobLifecycle(t *testing.T) {
	server := newTestServer(t)
	dataset := createTriangles(t, server.URL)

	status, env := doJSON(t, http.MethodPost, server.URL+"/api/v1/datasets/"+dataset.ID+"/searches", service.SearchParameters{
		Seeds: []int{1, 42, 5},
	})
	require.Equal(t, http.StatusAccepted, status, env.Error)

	var job service.Job
	require.NoError(t, json.Unmarshal(env.Data, &job))
	require.NotEmpty(t, job.ID)

	require.Eventually(t, func() bool {
		resp, err := http.Get(server.URL + "/api/v1/jobs/" + job.ID)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var current envelope
		var polled service.Job
		if json.NewDecoder(resp.Body).Decode(&current) != nil || json.Unmarshal(current.Data, &polled) != nil {
			return false
		}
		return polled.Status == service.JobStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(server.URL + "/api/v1/jobs/" + job.ID + "/results?format=text")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1 : [1, 2, 3] (3)\n42 : [] (0)\n5 : [4, 5, 6] (3)\n", string(body))

	status, env = doJSON(t, http.MethodGet, server.URL+"/api/v1/datasets/"+dataset.ID+"/searches", nil)
	assert.Equal(t, http.StatusOK, status)
	var jobs []service.Job
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	assert.Len(t, jobs, 1)

	status, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/jobs/"+job.ID+"/results?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearchRejectsInvalidParameters(t *testing.T) {
	server := newTestServer(t)
	dataset := createTriangles(t, server.URL)

	status, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/datasets/"+dataset.ID+"/searches", service.SearchParameters{
		Seeds:           []int{1},
		StrengthVariant: "Z",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/datasets/unknown/searches", service.SearchParameters{
		Seeds: []int{1},
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnknownJobEndpoints(t *testing.T) {
	server := newTestServer(t)

	status, _ := doJSON(t, http.MethodGet, server.URL+"/api/v1/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/jobs/missing/cancel", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, http.MethodGet, server.URL+"/api/v1/jobs/missing/results", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsAndCORS(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "siwo_http_requests_total")
}
