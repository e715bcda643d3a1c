package parser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/local-community-search/pkg/siwo"
)

// Format names an output encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json, yaml or yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// ResultDocument is the structured form of a batch of search results
type ResultDocument struct {
	Results []siwo.Result `json:"results" yaml:"results"`
}

// ResultWriter encodes search results
type ResultWriter interface {
	Write(w io.Writer, results []siwo.Result) error
}

// NewResultWriter returns the writer for format
func NewResultWriter(format Format) (ResultWriter, error) {
	switch format {
	case FormatText:
		return textWriter{}, nil
	case FormatJSON:
		return jsonWriter{}, nil
	case FormatYAML:
		return yamlWriter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// FormatCommunity renders "seed : [a, b, c] (n)"
func FormatCommunity(seed int, community []int) string {
	ids := make([]string, len(community))
	for i, id := range community {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%d : [%s] (%d)", seed, strings.Join(ids, ", "), len(community))
}

type textWriter struct{}

func (textWriter) Write(w io.Writer, results []siwo.Result) error {
	writer := bufio.NewWriter(w)
	for _, result := range results {
		if _, err := fmt.Fprintln(writer, FormatCommunity(result.Seed, result.Community)); err != nil {
			return err
		}
	}
	return writer.Flush()
}

type jsonWriter struct{}

func (jsonWriter) Write(w io.Writer, results []siwo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ResultDocument{Results: results})
}

type yamlWriter struct{}

func (yamlWriter) Write(w io.Writer, results []siwo.Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(ResultDocument{Results: results}); err != nil {
		return err
	}
	return encoder.Close()
}

// SaveResults writes results to path in the given format
func SaveResults(path string, format Format, results []siwo.Result) error {
	writer, err := NewResultWriter(format)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := writer.Write(file, results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
