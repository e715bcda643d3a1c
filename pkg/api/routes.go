package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/gilchrisn/local-community-search/pkg/metrics"
)

// SetupRoutes registers every endpoint on router
func SetupRoutes(router *mux.Router, handlers *Handlers, registry *metrics.Registry) {
	// API version prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Dataset management endpoints
	datasets := api.PathPrefix("/datasets").Subrouter()
	datasets.HandleFunc("", handlers.ListDatasets).Methods("GET")
	datasets.HandleFunc("", handlers.CreateDataset).Methods("POST")
	datasets.HandleFunc("/{datasetId}", handlers.GetDataset).Methods("GET")
	datasets.HandleFunc("/{datasetId}", handlers.DeleteDataset).Methods("DELETE")

	// Search endpoints
	datasets.HandleFunc("/{datasetId}/searches", handlers.StartSearch).Methods("POST")
	datasets.HandleFunc("/{datasetId}/searches", handlers.ListSearches).Methods("GET")

	// Job management endpoints
	jobs := api.PathPrefix("/jobs").Subrouter()
	jobs.HandleFunc("/{jobId}", handlers.GetJob).Methods("GET")
	jobs.HandleFunc("/{jobId}/cancel", handlers.CancelJob).Methods("POST")
	jobs.HandleFunc("/{jobId}/results", handlers.GetJobResults).Methods("GET")

	// Health check endpoint
	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")

	if registry != nil {
		router.Handle("/metrics", registry.Handler()).Methods("GET")
	}
}

// NewRouter builds the full handler stack with CORS applied outermost
func NewRouter(handlers *Handlers, registry *metrics.Registry, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, handlers, registry)

	router.Use(LoggingMiddleware(registry))
	router.Use(RecoveryMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}
