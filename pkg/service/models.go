package service

import (
	"errors"
	"time"

	"github.com/gilchrisn/local-community-search/pkg/analysis"
	"github.com/gilchrisn/local-community-search/pkg/graph"
)

var (
	ErrDatasetNotFound   = errors.New("dataset not found")
	ErrJobNotFound       = errors.New("job not found")
	ErrResultNotReady    = errors.New("job result not ready")
	ErrInvalidParameters = errors.New("invalid parameters")
)

// Dataset is a registered graph that searches can run against
type Dataset struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Source    string      `json:"source"`
	Weighted  bool        `json:"weighted"`
	Stats     graph.Stats `json:"stats"`
	CreatedAt time.Time   `json:"createdAt"`

	graph *graph.Graph
}

// JobStatus represents the state of a search job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// SearchParameters configures one search job. Unset fields fall back to the
// server configuration.
type SearchParameters struct {
	Seeds           []int    `json:"seeds"`
	StrengthVariant string   `json:"strengthVariant,omitempty"`
	TimeoutSeconds  *float64 `json:"timeoutSeconds,omitempty"`
	Amend           *bool    `json:"amend,omitempty"`
	Analyze         bool     `json:"analyze,omitempty"`
}

// JobProgress tracks how far a job has run
type JobProgress struct {
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

// Job is a batch of seed searches against one dataset
type Job struct {
	ID           string            `json:"id"`
	DatasetID    string            `json:"datasetId"`
	Parameters   SearchParameters  `json:"parameters"`
	Status       JobStatus         `json:"status"`
	Progress     JobProgress       `json:"progress"`
	Error        string            `json:"error,omitempty"`
	Summary      *analysis.Summary `json:"summary,omitempty"`
	InvalidSeeds []int             `json:"invalidSeeds,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
	StartedAt    *time.Time        `json:"startedAt,omitempty"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

// IsActive reports whether the job is queued or running
func (j *Job) IsActive() bool {
	return j.Status == JobStatusQueued || j.Status == JobStatusRunning
}
