package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantbench/dca-backtest/internal/backtest"
)

// JSONReporter serializes results for machine consumption.
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// WriteResult writes a single backtest result as indented JSON
func (r *JSONReporter) WriteResult(result *backtest.Result, path string) error {
	return writeJSON(result, path)
}

// WriteAggregates writes the averaged batch outcomes as indented JSON
func (r *JSONReporter) WriteAggregates(aggregates []*backtest.Aggregate, path string) error {
	return writeJSON(aggregates, path)
}

func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Package-level convenience functions

func WriteResultJSON(result *backtest.Result, path string) error {
	return NewJSONReporter().WriteResult(result, path)
}

func WriteAggregatesJSON(aggregates []*backtest.Aggregate, path string) error {
	return NewJSONReporter().WriteAggregates(aggregates, path)
}
