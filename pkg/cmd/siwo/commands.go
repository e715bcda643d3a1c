package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/local-community-search/pkg/analysis"
	"github.com/gilchrisn/local-community-search/pkg/metrics"
	"github.com/gilchrisn/local-community-search/pkg/parser"
	"github.com/gilchrisn/local-community-search/pkg/pipeline"
	"github.com/gilchrisn/local-community-search/pkg/siwo"
)

// flagBindings maps config keys to the persistent flags that override them
var flagBindings = map[string]string{
	"search.strength_variant":  "variant",
	"search.timeout_seconds":   "timeout",
	"search.amend":             "amend",
	"search.max_common_policy": "max-common",
	"input.weighted":           "weighted",
	"input.delimiter":          "delimiter",
	"output.format":            "format",
	"logging.level":            "log-level",
}

func newRootCmd() *cobra.Command {
	config := siwo.NewConfig()
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "siwo",
		Short:         "Local community search around seed vertices",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := config.LoadFromFile(configFile); err != nil {
					return err
				}
			}
			if err := config.Validate(); err != nil {
				return err
			}
			log.Logger = config.CreateLogger()
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML configuration file")
	flags.String("variant", string(siwo.VariantA), "strength variant (A or B)")
	flags.Float64("timeout", config.TimeoutSeconds(), "per-seed timeout in seconds")
	flags.Bool("amend", config.Amend(), "rescue communities smaller than three vertices")
	flags.String("max-common", string(siwo.MaxCommonLazy), "max common neighbor policy (lazy or eager)")
	flags.Bool("weighted", false, "read a weight column from the edge list")
	flags.String("delimiter", "", "field delimiter (default: any whitespace)")
	flags.String("format", "text", "output format (text, json or yaml)")
	flags.String("log-level", "info", "log level")
	for key, name := range flagBindings {
		cobra.CheckErr(config.Viper().BindPFlag(key, flags.Lookup(name)))
	}

	rootCmd.AddCommand(newSearchCmd(config), newInfoCmd(config), newServeCmd(config))
	return rootCmd
}

func newSearchCmd(config *siwo.Config) *cobra.Command {
	var (
		seeds       []int
		analyze     bool
		showSummary bool
	)

	cmd := &cobra.Command{
		Use:   "search <graph_file> [seed_file] [output_file]",
		Short: "Find the community of every seed",
		Long: `Search loads an edge list and grows one community per seed.
Seeds come from seed_file (one per line) or from --seed. Results go to
output_file, or to stdout when it is omitted.`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := pipeline.NewPipeline(config, log.Logger)
			p.Metrics = metrics.DefaultRegistry()
			p.Analyze = analyze

			var (
				result *pipeline.Result
				err    error
			)
			switch {
			case len(args) >= 2:
				output := ""
				if len(args) == 3 {
					output = args[2]
				}
				result, err = p.RunFiles(ctx, args[0], args[1], output)
				if err != nil {
					return err
				}
				if output != "" {
					return printSummary(cmd, result, showSummary)
				}
			case len(seeds) > 0:
				g, loadErr := parser.LoadGraph(args[0], parser.Options{
					Weighted:  config.Weighted(),
					Delimiter: config.Delimiter(),
				})
				if loadErr != nil {
					return fmt.Errorf("failed to load graph: %w", loadErr)
				}
				result, err = p.Run(ctx, g, seeds)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("either a seed file or --seed is required")
			}

			format, err := parser.ParseFormat(config.OutputFormat())
			if err != nil {
				return err
			}
			writer, err := parser.NewResultWriter(format)
			if err != nil {
				return err
			}
			if err := writer.Write(cmd.OutOrStdout(), result.Results); err != nil {
				return err
			}
			return printSummary(cmd, result, showSummary)
		},
	}

	cmd.Flags().IntSliceVar(&seeds, "seed", nil, "seed vertex (repeatable)")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "log quality measures for every community")
	cmd.Flags().BoolVar(&showSummary, "summary", false, "print batch statistics to stderr")
	return cmd
}

func printSummary(cmd *cobra.Command, result *pipeline.Result, show bool) error {
	for i, quality := range result.Quality {
		log.Info().
			Int("seed", result.Results[i].Seed).
			Int("size", quality.Size).
			Float64("conductance", quality.Conductance).
			Float64("modularity", quality.Modularity).
			Float64("density", quality.Density).
			Msg("Community quality")
	}
	if !show {
		return nil
	}

	s := result.Summary
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "Searches:     %d\n", s.Searches)
	fmt.Fprintf(out, "Invalid:      %d\n", len(result.InvalidSeeds))
	fmt.Fprintf(out, "Timed out:    %d\n", s.TimedOut)
	fmt.Fprintf(out, "Size:         mean %.2f, stddev %.2f, min %d, max %d\n", s.MeanSize, s.StdDevSize, s.MinSize, s.MaxSize)
	fmt.Fprintf(out, "Coverage:     %.4f\n", s.Coverage)
	fmt.Fprintf(out, "Runtime:      %v\n", result.TotalRuntime)
	return nil
}

func newInfoCmd(config *siwo.Config) *cobra.Command {
	var (
		exportPath string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "info <graph_file>",
		Short: "Print graph statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := parser.LoadGraph(args[0], parser.Options{
				Weighted:  config.Weighted(),
				Delimiter: config.Delimiter(),
			})
			if err != nil {
				return fmt.Errorf("failed to load graph: %w", err)
			}

			stats := g.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vertices:     %d\n", stats.Vertices)
			fmt.Fprintf(out, "Edges:        %d\n", stats.Edges)
			fmt.Fprintf(out, "Total weight: %.6f\n", stats.TotalWeight)
			fmt.Fprintf(out, "Self-loops:   %d\n", stats.SelfLoops)
			fmt.Fprintf(out, "Isolated:     %d\n", stats.Isolated)
			fmt.Fprintf(out, "Max degree:   %.6f\n", stats.MaxDegree)

			if top > 0 {
				ranked := analysis.RankMembers(g, g.VertexIDs())
				if top < len(ranked) {
					ranked = ranked[:top]
				}
				fmt.Fprintln(out, "PageRank:")
				for _, v := range ranked {
					fmt.Fprintf(out, "  %d %.6f\n", v.ID, v.Score)
				}
			}

			if exportPath == "" {
				return nil
			}
			file, err := os.Create(exportPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportPath, err)
			}
			defer file.Close()
			if err := parser.WriteEdges(file, parser.GraphEdges(g)); err != nil {
				return err
			}
			log.Info().Str("path", exportPath).Int("edges", stats.Edges).Msg("Normalized edge list written")
			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write the normalized weighted edge list to this file")
	cmd.Flags().IntVar(&top, "top", 0, "print the top vertices by PageRank")
	return cmd
}

func newServeCmd(config *siwo.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(context.Background(), config)
		},
	}
	cmd.Flags().String("address", config.ServerAddress(), "listen address")
	cobra.CheckErr(config.Viper().BindPFlag("server.address", cmd.Flags().Lookup("address")))
	return cmd
}
