package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/local-community-search/pkg/analysis"
	"github.com/gilchrisn/local-community-search/pkg/graph"
	"github.com/gilchrisn/local-community-search/pkg/metrics"
	"github.com/gilchrisn/local-community-search/pkg/parser"
	"github.com/gilchrisn/local-community-search/pkg/siwo"
	"github.com/gilchrisn/local-community-search/pkg/validation"
)

// ProgressFunc reports how many seeds of a batch have been processed
type ProgressFunc func(done, total int)

// Pipeline runs a batch of seed searches against one graph
type Pipeline struct {
	Config  *siwo.Config
	Metrics *metrics.Registry

	// Analyze attaches quality measures to every result
	Analyze bool

	OnProgress ProgressFunc

	logger zerolog.Logger
}

// Result contains the complete batch output
type Result struct {
	GraphStats   graph.Stats        `json:"graph" yaml:"graph"`
	Results      []siwo.Result      `json:"results" yaml:"results"`
	Quality      []analysis.Quality `json:"quality,omitempty" yaml:"quality,omitempty"` // parallel to Results when Analyze is set
	InvalidSeeds []int              `json:"invalid_seeds" yaml:"invalid_seeds"`
	Summary      analysis.Summary   `json:"summary" yaml:"summary"`
	TotalRuntime time.Duration      `json:"total_runtime_ns" yaml:"total_runtime"`
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(config *siwo.Config, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		Config: config,
		logger: logger,
	}
}

// Run searches every seed in order, reusing one searcher so strength caches
// carry over between seeds. Seeds that are not in the graph produce an empty
// result and are listed in InvalidSeeds. A cancelled ctx stops the batch
// between seeds and returns the results gathered so far with the error.
func (p *Pipeline) Run(ctx context.Context, g *graph.Graph, seeds []int) (*Result, error) {
	startTime := time.Now()

	stats := g.Stats()
	p.logger.Info().
		Int("vertices", stats.Vertices).
		Int("edges", stats.Edges).
		Float64("total_weight", stats.TotalWeight).
		Int("self_loops", stats.SelfLoops).
		Int("isolated", stats.Isolated).
		Float64("max_degree", stats.MaxDegree).
		Msg("Graph loaded")
	_, missing := validation.SplitSeeds(g, seeds)
	p.logger.Info().
		Int("seeds", len(seeds)).
		Int("missing_seeds", len(missing)).
		Msg("Starting community search")

	searcher := siwo.NewSearcher(g, p.Config, p.logger)
	variant := string(p.Config.StrengthVariant())

	result := &Result{
		GraphStats:   stats,
		Results:      make([]siwo.Result, 0, len(seeds)),
		InvalidSeeds: make([]int, 0),
	}

	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			result.TotalRuntime = time.Since(startTime)
			return result, fmt.Errorf("search batch stopped after %d of %d seeds: %w", i, len(seeds), err)
		}

		found, err := searcher.Search(seed)
		if err != nil {
			if !errors.Is(err, siwo.ErrInvalidSeed) {
				return nil, fmt.Errorf("search from seed %d failed: %w", seed, err)
			}
			p.logger.Warn().Int("seed", seed).Msg("Seed not in graph, emitting empty community")
			if p.Metrics != nil {
				p.Metrics.RecordInvalidSeed(variant)
			}
			result.InvalidSeeds = append(result.InvalidSeeds, seed)
			found = siwo.Result{Seed: seed, Community: []int{}, Status: siwo.StatusIdle}
		} else {
			p.logger.Info().
				Int("seed", seed).
				Int("size", found.Size()).
				Bool("timed_out", found.TimedOut).
				Dur("elapsed", found.Elapsed).
				Msg("Community found")
			if p.Metrics != nil {
				p.Metrics.RecordSearch(variant, string(found.Status), found.Elapsed,
					found.Size(), found.Iterations, found.Amended, found.Dangling)
			}
		}

		result.Results = append(result.Results, found)
		if p.Analyze {
			result.Quality = append(result.Quality, analysis.Evaluate(g, found.Community))
		}
		if p.OnProgress != nil {
			p.OnProgress(i+1, len(seeds))
		}
	}

	result.Summary = analysis.Summarize(g, result.Results)
	result.TotalRuntime = time.Since(startTime)

	p.logger.Info().
		Int("searches", result.Summary.Searches).
		Int("invalid_seeds", len(result.InvalidSeeds)).
		Int("timed_out", result.Summary.TimedOut).
		Float64("mean_size", result.Summary.MeanSize).
		Float64("coverage", result.Summary.Coverage).
		Dur("elapsed", result.TotalRuntime).
		Msg("Community search completed")

	return result, nil
}

// RunFiles loads the graph and seeds, runs the batch and, when outputFile is
// set, writes the results in the configured output format.
func (p *Pipeline) RunFiles(ctx context.Context, graphFile, seedFile, outputFile string) (*Result, error) {
	opts := parser.Options{
		Weighted:  p.Config.Weighted(),
		Delimiter: p.Config.Delimiter(),
	}

	for _, path := range []string{graphFile, seedFile} {
		if err := validation.ValidateInputFile(path); err != nil {
			return nil, err
		}
	}
	if outputFile != "" {
		if err := validation.ValidateOutputFile(outputFile); err != nil {
			return nil, err
		}
	}

	g, err := parser.LoadGraph(graphFile, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	if err := validation.ValidateGraph(g); err != nil {
		return nil, fmt.Errorf("invalid graph %s: %w", graphFile, err)
	}
	seeds, err := parser.LoadSeeds(seedFile, parser.Options{Delimiter: opts.Delimiter})
	if err != nil {
		return nil, fmt.Errorf("failed to load seeds: %w", err)
	}

	result, err := p.Run(ctx, g, seeds)
	if err != nil {
		return result, err
	}

	if outputFile != "" {
		format, err := parser.ParseFormat(p.Config.OutputFormat())
		if err != nil {
			return result, err
		}
		if err := parser.SaveResults(outputFile, format, result.Results); err != nil {
			return result, fmt.Errorf("output generation failed: %w", err)
		}
		p.logger.Info().Str("path", outputFile).Str("format", string(format)).Msg("Results written")
	}

	return result, nil
}
