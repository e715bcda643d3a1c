package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/local-community-search/pkg/metrics"
	"github.com/gilchrisn/local-community-search/pkg/pipeline"
	"github.com/gilchrisn/local-community-search/pkg/siwo"
)

const jobTimeout = 10 * time.Minute

// JobService runs search jobs in the background. Searches write strengths
// into the shared dataset graph, so only one job runs at a time.
type JobService struct {
	jobs            map[string]*Job
	results         map[string]*pipeline.Result
	cancels         map[string]context.CancelFunc
	workers         chan struct{}
	datasetService  *DatasetService
	config          *siwo.Config
	metrics         *metrics.Registry
	mutex           sync.RWMutex
	jobTTL          time.Duration
	cleanupInterval time.Duration
	queued          int
	done            chan struct{}
	closeOnce       sync.Once
	wg              sync.WaitGroup
}

// NewJobService creates a new job service and starts its cleanup loop
func NewJobService(datasetService *DatasetService, config *siwo.Config, registry *metrics.Registry) *JobService {
	service := &JobService{
		jobs:            make(map[string]*Job),
		results:         make(map[string]*pipeline.Result),
		cancels:         make(map[string]context.CancelFunc),
		workers:         make(chan struct{}, 1),
		datasetService:  datasetService,
		config:          config,
		metrics:         registry,
		jobTTL:          config.ResultTTL(),
		cleanupInterval: config.JobCleanupInterval(),
		done:            make(chan struct{}),
	}
	if service.cleanupInterval <= 0 {
		service.cleanupInterval = 5 * time.Minute
	}

	go service.cleanupLoop()

	return service
}

// Submit validates params and queues a new search job
func (s *JobService) Submit(datasetID string, params SearchParameters) (*Job, error) {
	if _, err := s.datasetService.Get(datasetID); err != nil {
		return nil, err
	}
	if _, err := s.jobConfig(params); err != nil {
		return nil, err
	}

	now := time.Now()
	job := &Job{
		ID:         uuid.New().String(),
		DatasetID:  datasetID,
		Parameters: params,
		Status:     JobStatusQueued,
		Progress: JobProgress{
			Percentage: 0,
			Message:    "Queued",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mutex.Lock()
	s.jobs[job.ID] = job
	s.queued++
	s.reportQueue()
	s.mutex.Unlock()

	log.Info().
		Str("job_id", job.ID).
		Str("dataset_id", datasetID).
		Int("seeds", len(params.Seeds)).
		Msg("Job submitted")

	s.wg.Add(1)
	go s.processJob(job.ID)

	return s.snapshot(job), nil
}

// Get retrieves a copy of a job by ID
func (s *JobService) Get(jobID string) (*Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return s.snapshot(job), nil
}

// GetResult retrieves the batch result of a completed job
func (s *JobService) GetResult(jobID string) (*pipeline.Result, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	result, exists := s.results[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: job is %s", ErrResultNotReady, job.Status)
	}
	return result, nil
}

// List returns all jobs for a dataset
func (s *JobService) List(datasetID string) []*Job {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var jobs []*Job
	for _, job := range s.jobs {
		if job.DatasetID == datasetID {
			jobs = append(jobs, s.snapshot(job))
		}
	}
	return jobs
}

// Cancel stops a queued or running job
func (s *JobService) Cancel(jobID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if !job.IsActive() {
		return nil
	}

	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
	}
	job.Status = JobStatusCancelled
	job.Progress.Message = "Cancelled"
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now

	log.Info().Str("job_id", jobID).Msg("Job cancelled")
	return nil
}

// Close stops the cleanup loop and waits for submitted jobs to finish
func (s *JobService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// processJob runs a job once the worker slot is free
func (s *JobService) processJob(jobID string) {
	defer s.wg.Done()

	// Acquire worker slot
	s.workers <- struct{}{}
	defer func() { <-s.workers }()

	s.mutex.Lock()
	s.queued--
	s.reportQueue()
	job, exists := s.jobs[jobID]
	if !exists || job.Status != JobStatusQueued {
		s.mutex.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	s.cancels[jobID] = cancel

	startTime := time.Now()
	job.Status = JobStatusRunning
	job.Progress = JobProgress{Percentage: 0, Message: "Starting..."}
	job.StartedAt = &startTime
	job.UpdatedAt = startTime
	datasetID := job.DatasetID
	params := job.Parameters
	s.mutex.Unlock()

	log.Info().
		Str("job_id", jobID).
		Str("dataset_id", datasetID).
		Msg("Job processing started")

	dataset, err := s.datasetService.Get(datasetID)
	if err != nil {
		s.failJob(jobID, fmt.Errorf("failed to get dataset: %w", err), startTime)
		return
	}
	config, err := s.jobConfig(params)
	if err != nil {
		s.failJob(jobID, err, startTime)
		return
	}

	p := pipeline.NewPipeline(config, log.Logger.With().Str("job_id", jobID).Logger())
	p.Metrics = s.metrics
	p.Analyze = params.Analyze
	p.OnProgress = func(done, total int) {
		s.updateProgress(jobID, done*100/total, fmt.Sprintf("Searched %d of %d seeds", done, total))
	}

	result, err := p.Run(ctx, dataset.graph, params.Seeds)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.finishCancelled(jobID)
			return
		}
		s.failJob(jobID, fmt.Errorf("search execution failed: %w", err), startTime)
		return
	}

	s.completeJob(jobID, result, startTime)
}

// jobConfig overlays params on a copy of the server configuration
func (s *JobService) jobConfig(params SearchParameters) (*siwo.Config, error) {
	if len(params.Seeds) == 0 {
		return nil, fmt.Errorf("%w: at least one seed is required", ErrInvalidParameters)
	}

	config := s.config.Clone()
	if params.StrengthVariant != "" {
		variant, err := siwo.ParseStrengthVariant(params.StrengthVariant)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
		}
		config.Set("search.strength_variant", string(variant))
	}
	if params.TimeoutSeconds != nil {
		if *params.TimeoutSeconds < 0 {
			return nil, fmt.Errorf("%w: timeoutSeconds must not be negative", ErrInvalidParameters)
		}
		config.Set("search.timeout_seconds", *params.TimeoutSeconds)
	}
	if params.Amend != nil {
		config.Set("search.amend", *params.Amend)
	}
	return config, nil
}

func (s *JobService) updateProgress(jobID string, percentage int, message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status != JobStatusRunning {
		return
	}
	job.Progress.Percentage = percentage
	job.Progress.Message = message
	job.UpdatedAt = time.Now()

	log.Debug().
		Str("job_id", jobID).
		Int("percentage", percentage).
		Str("message", message).
		Msg("Job status updated")
}

// completeJob marks a job as completed with results
func (s *JobService) completeJob(jobID string, result *pipeline.Result, startTime time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.cancels, jobID)
	job, exists := s.jobs[jobID]
	if !exists {
		return
	}
	if job.Status != JobStatusRunning {
		return
	}

	job.Status = JobStatusCompleted
	job.Progress.Percentage = 100
	job.Progress.Message = "Complete"
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	summary := result.Summary
	job.Summary = &summary
	job.InvalidSeeds = result.InvalidSeeds

	s.results[jobID] = result
	if s.metrics != nil {
		s.metrics.RecordJob(string(JobStatusCompleted), now.Sub(startTime))
	}

	log.Info().
		Str("job_id", jobID).
		Int("searches", summary.Searches).
		Float64("mean_size", summary.MeanSize).
		Dur("elapsed", result.TotalRuntime).
		Msg("Job completed successfully")
}

// failJob marks a job as failed
func (s *JobService) failJob(jobID string, err error, startTime time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.cancels, jobID)
	job, exists := s.jobs[jobID]
	if !exists {
		return
	}

	job.Status = JobStatusFailed
	job.Error = err.Error()
	job.Progress.Message = "Failed"
	now := time.Now()
	job.CompletedAt = &now
	job.UpdatedAt = now
	if s.metrics != nil {
		s.metrics.RecordJob(string(JobStatusFailed), now.Sub(startTime))
	}

	log.Error().
		Str("job_id", jobID).
		Err(err).
		Msg("Job failed")
}

func (s *JobService) finishCancelled(jobID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.cancels, jobID)
	log.Info().Str("job_id", jobID).Msg("Job stopped after cancellation")
}

// reportQueue publishes the queue length; callers hold the mutex
func (s *JobService) reportQueue() {
	if s.metrics != nil {
		s.metrics.SetJobsQueued(s.queued)
	}
}

func (s *JobService) snapshot(job *Job) *Job {
	clone := *job
	return &clone
}

// cleanupLoop periodically cleans up old jobs and results
func (s *JobService) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.done:
			return
		}
	}
}

// cleanup removes finished jobs last updated before now minus the TTL
func (s *JobService) cleanup(now time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := now.Add(-s.jobTTL)
	cleaned := 0

	for jobID, job := range s.jobs {
		if !job.IsActive() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, jobID)
			delete(s.results, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		log.Info().
			Int("cleaned_jobs", cleaned).
			Msg("Job cleanup completed")
	}
	return cleaned
}
