package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.txt")
	seedPath := filepath.Join(dir, "seeds.txt")
	require.NoError(t, os.WriteFile(graphPath, []byte("1 2\n2 3\n3 1\n3 4\n4 5\n5 6\n6 4\n"), 0o644))
	require.NoError(t, os.WriteFile(seedPath, []byte("1\n7\n5\n"), 0o644))
	return graphPath, seedPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchCommandWritesToStdout(t *testing.T) {
	graphPath, seedPath := writeFixtures(t)

	out, err := execute(t, "search", graphPath, seedPath)
	require.NoError(t, err)

	assert.Equal(t, "1 : [1, 2, 3] (3)\n7 : [] (0)\n5 : [4, 5, 6] (3)\n", out)
}

func TestSearchCommandWithSeedFlagAndVariantB(t *testing.T) {
	graphPath, _ := writeFixtures(t)

	out, err := execute(t, "search", graphPath, "--seed", "4", "--variant", "B")
	require.NoError(t, err)

	assert.Equal(t, "4 : [4, 5, 6] (3)\n", out)
}

func TestSearchCommandWritesOutputFile(t *testing.T) {
	graphPath, seedPath := writeFixtures(t)
	outputPath := filepath.Join(t.TempDir(), "out.txt")

	_, err := execute(t, "search", graphPath, seedPath, outputPath)
	require.NoError(t, err)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "1 : [1, 2, 3] (3)\n7 : [] (0)\n5 : [4, 5, 6] (3)\n", string(content))
}

func TestSearchCommandRequiresSeeds(t *testing.T) {
	graphPath, _ := writeFixtures(t)

	_, err := execute(t, "search", graphPath)
	assert.Error(t, err)

	_, err = execute(t, "search", graphPath, "--seed", "1", "--variant", "C")
	assert.Error(t, err)
}

func TestInfoCommandExportsEdges(t *testing.T) {
	graphPath, _ := writeFixtures(t)
	exportPath := filepath.Join(t.TempDir(), "edges.txt")

	out, err := execute(t, "info", graphPath, "--export", exportPath, "--top", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Vertices:     6")
	assert.Contains(t, out, "Edges:        7")
	assert.Contains(t, out, "PageRank:")

	content, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "3 4 1.000000\n")
}
