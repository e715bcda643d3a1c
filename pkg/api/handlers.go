package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/local-community-search/pkg/parser"
	"github.com/gilchrisn/local-community-search/pkg/service"
)

// CreateDatasetRequest registers a graph from a server-side file or from
// inline edges given as [u, v] or [u, v, w].
type CreateDatasetRequest struct {
	Name      string      `json:"name"`
	Path      string      `json:"path,omitempty"`
	Weighted  bool        `json:"weighted,omitempty"`
	Delimiter string      `json:"delimiter,omitempty"`
	Edges     [][]float64 `json:"edges,omitempty"`
}

// Handlers contains HTTP request handlers
type Handlers struct {
	datasetService *service.DatasetService
	jobService     *service.JobService
	startedAt      time.Time
}

// NewHandlers creates new API handlers
func NewHandlers(datasetService *service.DatasetService, jobService *service.JobService) *Handlers {
	return &Handlers{
		datasetService: datasetService,
		jobService:     jobService,
		startedAt:      time.Now(),
	}
}

// CreateDataset registers a new graph
func (h *Handlers) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req CreateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		dataset *service.Dataset
		err     error
	)
	switch {
	case len(req.Edges) > 0:
		edges, convErr := toEdges(req.Edges, req.Weighted)
		if convErr != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "Invalid edges", convErr)
			return
		}
		dataset, err = h.datasetService.CreateFromEdges(req.Name, edges, req.Weighted)
	case req.Path != "":
		dataset, err = h.datasetService.LoadFile(req.Name, req.Path, parser.Options{
			Weighted:  req.Weighted,
			Delimiter: req.Delimiter,
		})
	default:
		WriteErrorResponse(w, http.StatusBadRequest, "Either path or edges is required", nil)
		return
	}

	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Dataset creation failed")
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		WriteErrorResponse(w, status, "Dataset creation failed", err)
		return
	}

	WriteSuccessResponse(w, "Dataset created successfully", dataset)
}

// ListDatasets lists all datasets
func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, "Datasets retrieved successfully", h.datasetService.List())
}

// GetDataset retrieves a specific dataset
func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	dataset, err := h.datasetService.Get(mux.Vars(r)["datasetId"])
	if err != nil {
		WriteErrorResponse(w, statusFor(err), "Dataset not found", err)
		return
	}
	WriteSuccessResponse(w, "Dataset retrieved successfully", dataset)
}

// DeleteDataset deletes a dataset
func (h *Handlers) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.datasetService.Delete(mux.Vars(r)["datasetId"]); err != nil {
		WriteErrorResponse(w, statusFor(err), "Dataset deletion failed", err)
		return
	}
	WriteSuccessResponse(w, "Dataset deleted successfully", nil)
}

// StartSearch queues a batch of seed searches against a dataset
func (h *Handlers) StartSearch(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["datasetId"]

	var params service.SearchParameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	job, err := h.jobService.Submit(datasetID, params)
	if err != nil {
		WriteErrorResponse(w, statusFor(err), "Failed to start search", err)
		return
	}

	WriteAcceptedResponse(w, "Search job queued", job)
}

// ListSearches lists the jobs of a dataset
func (h *Handlers) ListSearches(w http.ResponseWriter, r *http.Request) {
	datasetID := mux.Vars(r)["datasetId"]
	if _, err := h.datasetService.Get(datasetID); err != nil {
		WriteErrorResponse(w, statusFor(err), "Dataset not found", err)
		return
	}
	WriteSuccessResponse(w, "Jobs retrieved successfully", h.jobService.List(datasetID))
}

// GetJob retrieves job status
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.Get(mux.Vars(r)["jobId"])
	if err != nil {
		WriteErrorResponse(w, statusFor(err), "Job not found", err)
		return
	}
	WriteSuccessResponse(w, "Job retrieved successfully", job)
}

// CancelJob stops a queued or running job
func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]
	if err := h.jobService.Cancel(jobID); err != nil {
		WriteErrorResponse(w, statusFor(err), "Job cancellation failed", err)
		return
	}
	job, err := h.jobService.Get(jobID)
	if err != nil {
		WriteErrorResponse(w, statusFor(err), "Job not found", err)
		return
	}
	WriteSuccessResponse(w, "Job cancelled", job)
}

// GetJobResults returns the results of a completed job. format=text or
// format=yaml render the batch output file formats instead of JSON.
func (h *Handlers) GetJobResults(w http.ResponseWriter, r *http.Request) {
	result, err := h.jobService.GetResult(mux.Vars(r)["jobId"])
	if err != nil {
		WriteErrorResponse(w, statusFor(err), "Results not available", err)
		return
	}

	requested := r.URL.Query().Get("format")
	if requested == "" {
		WriteSuccessResponse(w, "Results retrieved successfully", result)
		return
	}

	format, err := parser.ParseFormat(requested)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Unsupported format", err)
		return
	}
	if format == parser.FormatJSON {
		WriteSuccessResponse(w, "Results retrieved successfully", result)
		return
	}

	writer, err := parser.NewResultWriter(format)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Unsupported format", err)
		return
	}
	if format == parser.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	if err := writer.Write(w, result.Results); err != nil {
		log.Error().Err(err).Msg("Failed to write results")
	}
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, "Service is healthy", map[string]interface{}{
		"status":   "ok",
		"datasets": len(h.datasetService.List()),
		"uptime":   time.Since(h.startedAt).String(),
	})
}

func toEdges(raw [][]float64, weighted bool) ([]parser.Edge, error) {
	edges := make([]parser.Edge, 0, len(raw))
	for i, record := range raw {
		if len(record) < 2 || len(record) > 3 {
			return nil, fmt.Errorf("edge %d: expected [u, v] or [u, v, w]", i)
		}
		edge := parser.Edge{From: int(record[0]), To: int(record[1]), Weight: 1.0}
		if float64(edge.From) != record[0] || float64(edge.To) != record[1] {
			return nil, fmt.Errorf("edge %d: vertex ids must be integers", i)
		}
		if weighted && len(record) == 3 {
			edge.Weight = record[2]
		}
		edges = append(edges, edge)
	}
	return edges, nil
}
