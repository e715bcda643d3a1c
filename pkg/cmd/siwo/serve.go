package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/local-community-search/pkg/api"
	"github.com/gilchrisn/local-community-search/pkg/metrics"
	"github.com/gilchrisn/local-community-search/pkg/service"
	"github.com/gilchrisn/local-community-search/pkg/siwo"
)

func serve(ctx context.Context, config *siwo.Config) error {
	log.Info().Msg("Starting SIWO search service")

	registry := metrics.DefaultRegistry()
	datasetService := service.NewDatasetService(registry)
	jobService := service.NewJobService(datasetService, config, registry)
	defer jobService.Close()

	log.Info().
		Str("address", config.ServerAddress()).
		Str("strength_variant", string(config.StrengthVariant())).
		Dur("timeout", config.Timeout()).
		Dur("result_ttl", config.ResultTTL()).
		Msg("Services initialized")

	handlers := api.NewHandlers(datasetService, jobService)
	server := &http.Server{
		Addr:         config.ServerAddress(),
		Handler:      api.NewRouter(handlers, registry, config.AllowedOrigins()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server shutdown complete")
	return nil
}
