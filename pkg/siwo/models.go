package siwo

import (
	"fmt"
	"strings"
	"time"
)

// MinImprovement is the smallest accumulated improvement that lets a shell
// vertex join the community.
const MinImprovement = 0.000001

// StrengthVariant selects how common-neighbor ratios become a strength score
type StrengthVariant string

const (
	// VariantA scores s1 + s2 - 1, in [-1, 1]
	VariantA StrengthVariant = "A"
	// VariantB scores (s1 + s2) / 2, in [0, 1]
	VariantB StrengthVariant = "B"
)

// ParseStrengthVariant accepts "A"/"B" (any case) and the numeric aliases "1"/"2"
func ParseStrengthVariant(s string) (StrengthVariant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "1":
		return VariantA, nil
	case "B", "2":
		return VariantB, nil
	}
	return "", fmt.Errorf("unknown strength variant %q", s)
}

// MaxCommonPolicy controls when a vertex's maximum common-neighbor count is
// considered resolved.
type MaxCommonPolicy string

const (
	// MaxCommonLazy reads whatever has been observed so far. A neighbor whose
	// own pass has not run may report a value below its final maximum.
	MaxCommonLazy MaxCommonPolicy = "lazy"
	// MaxCommonEager resolves every pair of a vertex before its maximum is read.
	MaxCommonEager MaxCommonPolicy = "eager"
)

// ParseMaxCommonPolicy parses "lazy" or "eager"
func ParseMaxCommonPolicy(s string) (MaxCommonPolicy, error) {
	switch MaxCommonPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case MaxCommonLazy:
		return MaxCommonLazy, nil
	case MaxCommonEager:
		return MaxCommonEager, nil
	}
	return "", fmt.Errorf("unknown max common neighbor policy %q", s)
}

// Status is the lifecycle state of a Searcher
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSeeded    Status = "seeded"
	StatusGrowing   Status = "growing"
	StatusTimedOut  Status = "timed_out"
	StatusConverged Status = "converged"
	StatusAmending  Status = "amending"
	StatusMerged    Status = "merged"
	StatusDone      Status = "done"
)

// Result is the outcome of one seed-to-community expansion
type Result struct {
	Seed       int           `json:"seed" yaml:"seed"`
	Community  []int         `json:"community" yaml:"community"`
	Status     Status        `json:"status" yaml:"status"`
	TimedOut   bool          `json:"timed_out" yaml:"timed_out"`
	Iterations int           `json:"iterations" yaml:"iterations"`
	Joined     int           `json:"joined" yaml:"joined"`     // vertices added by the growth loop
	Amended    int           `json:"amended" yaml:"amended"`   // vertices added by the rescue search
	Dangling   int           `json:"dangling" yaml:"dangling"` // pendant vertices merged
	Elapsed    time.Duration `json:"elapsed_ns" yaml:"elapsed"`
}

// Size returns the number of community members
func (r Result) Size() int {
	return len(r.Community)
}

// JoinEvent describes one vertex joining the community during growth
type JoinEvent struct {
	Iteration     int
	Vertex        int
	Improvement   float64
	CommunitySize int
	ShellSize     int
}

// ProgressCallback is invoked after every join
type ProgressCallback func(event JoinEvent)
