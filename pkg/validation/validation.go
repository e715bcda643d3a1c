package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gilchrisn/local-community-search/pkg/graph"
)

// ErrEmptyGraph is returned for a graph without vertices
var ErrEmptyGraph = errors.New("graph has no vertices")

// ValidationErrors collects every problem found in one pass
type ValidationErrors []error

func (ve ValidationErrors) Error() string {
	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(ve), strings.Join(messages, "; "))
}

func (ve ValidationErrors) Unwrap() []error {
	return ve
}

// ValidateInputFile checks that path is an existing, readable regular file
func ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path is a directory: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	return file.Close()
}

// ValidateOutputDirectory checks if output directory exists or can be created
func ValidateOutputDirectory(outputDir string) error {
	info, err := os.Stat(outputDir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path exists but is not a directory: %s", outputDir)
	}

	testFile := filepath.Join(outputDir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return fmt.Errorf("output directory is not writable: %w", err)
	}
	os.Remove(testFile)

	return nil
}

// ValidateOutputFile checks that the directory holding path is writable
func ValidateOutputFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", path)
	}
	return ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateGraph rejects empty graphs and graphs whose adjacency is not a
// symmetric non-negative weighting.
func ValidateGraph(g *graph.Graph) error {
	var errs ValidationErrors
	if g.VertexCount() == 0 {
		errs = append(errs, ErrEmptyGraph)
	}
	if err := g.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsolatedVertices returns the vertices without neighbors in ascending order
func IsolatedVertices(g *graph.Graph) []int {
	isolated := make([]int, 0)
	for _, id := range g.VertexIDs() {
		if v, ok := g.Vertex(id); ok && v.NumNeighbors() == 0 {
			isolated = append(isolated, id)
		}
	}
	sort.Ints(isolated)
	return isolated
}

// SplitSeeds partitions seeds into those present in g and those missing,
// keeping input order and duplicates.
func SplitSeeds(g *graph.Graph, seeds []int) (present, missing []int) {
	present = make([]int, 0, len(seeds))
	missing = make([]int, 0)
	for _, seed := range seeds {
		if g.HasVertex(seed) {
			present = append(present, seed)
		} else {
			missing = append(missing, seed)
		}
	}
	return present, missing
}
