package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gilchrisn/local-community-search/pkg/graph"
)

// ErrMalformedLine is wrapped by every record-level parse failure
var ErrMalformedLine = errors.New("malformed record")

// Edge represents a weighted undirected edge
type Edge struct {
	From   int
	To     int
	Weight float64
}

// Options controls how records are split and read
type Options struct {
	// Weighted reads a third column as the edge weight
	Weighted bool
	// Delimiter separates fields; empty means any run of whitespace
	Delimiter string
}

// ReadEdges parses an edge list. Blank lines and lines starting with '#' or
// '%' are skipped.
func ReadEdges(r io.Reader, opts Options) ([]Edge, error) {
	var edges []Edge
	err := scanRecords(r, opts, func(lineNo int, fields []string) error {
		if len(fields) < 2 {
			return fmt.Errorf("line %d: %w: expected at least 2 fields, got %d", lineNo, ErrMalformedLine, len(fields))
		}
		from, err := parseVertexID(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		to, err := parseVertexID(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		weight := graph.DefaultWeight
		if opts.Weighted && len(fields) >= 3 {
			weight, err = strconv.ParseFloat(fields[2], 64)
			if err != nil || weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
				return fmt.Errorf("line %d: %w: invalid weight %q", lineNo, ErrMalformedLine, fields[2])
			}
		}

		edges = append(edges, Edge{From: from, To: to, Weight: weight})
		return nil
	})
	return edges, err
}

// ReadGraph parses an edge list straight into a graph. Repeated pairs
// overwrite the earlier weight.
func ReadGraph(r io.Reader, opts Options) (*graph.Graph, error) {
	edges, err := ReadEdges(r, opts)
	if err != nil {
		return nil, err
	}
	return BuildGraph(edges), nil
}

// BuildGraph inserts edges in order into a new graph
func BuildGraph(edges []Edge) *graph.Graph {
	g := graph.NewGraph()
	for _, edge := range edges {
		g.AddWeightedEdge(edge.From, edge.To, edge.Weight)
	}
	return g
}

// LoadGraph reads an edge list file
func LoadGraph(path string, opts Options) (*graph.Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edge list: %w", err)
	}
	defer file.Close()

	g, err := ReadGraph(file, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return g, nil
}

// ReadSeeds returns the first field of every record as a seed id. Negative
// ids are accepted here and reported as invalid seeds by the search.
func ReadSeeds(r io.Reader, opts Options) ([]int, error) {
	seeds := make([]int, 0)
	err := scanRecords(r, opts, func(lineNo int, fields []string) error {
		seed, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: %w: invalid seed %q", lineNo, ErrMalformedLine, fields[0])
		}
		seeds = append(seeds, seed)
		return nil
	})
	return seeds, err
}

// LoadSeeds reads a seed file
func LoadSeeds(path string, opts Options) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	seeds, err := ReadSeeds(file, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return seeds, nil
}

// WriteEdges writes edges in "from to weight" format
func WriteEdges(w io.Writer, edges []Edge) error {
	writer := bufio.NewWriter(w)
	for _, edge := range edges {
		if _, err := fmt.Fprintf(writer, "%d %d %.6f\n", edge.From, edge.To, edge.Weight); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// GraphEdges lists every undirected edge of g once, ordered by endpoints
func GraphEdges(g *graph.Graph) []Edge {
	var edges []Edge
	for _, u := range g.VertexIDs() {
		for _, v := range g.Neighbors(u) {
			if v < u {
				continue
			}
			edges = append(edges, Edge{From: u, To: v, Weight: g.EdgeWeight(u, v)})
		}
	}
	return edges
}

func scanRecords(r io.Reader, opts Options, handle func(lineNo int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}
		fields := splitFields(line, opts.Delimiter)
		if len(fields) == 0 {
			continue
		}
		if err := handle(lineNo, fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func splitFields(line, delimiter string) []string {
	if delimiter == "" {
		return strings.Fields(line)
	}
	parts := strings.Split(line, delimiter)
	fields := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

func parseVertexID(field string) (int, error) {
	id, err := strconv.Atoi(field)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: invalid vertex id %q", ErrMalformedLine, field)
	}
	return id, nil
}
