package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quantbench/dca-backtest/internal/backtest"
)

// CSVReporter writes trajectory data as CSV for downstream analysis.
type CSVReporter struct{}

// NewCSVReporter creates a new CSV reporter
func NewCSVReporter() *CSVReporter {
	return &CSVReporter{}
}

// WriteTrajectory writes one row per sampled day plus one per executed buy.
func (r *CSVReporter) WriteTrajectory(traj *backtest.Trajectory, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "invested", "units", "value", "event_amount", "event_price"}); err != nil {
		return err
	}

	// Samples are emitted one per event, then a final valuation sample,
	// so pairing by index keeps every buy even when consecutive events
	// settle on the same trading day.
	for i, s := range traj.Samples {
		row := []string{
			s.Date.Format("2006-01-02"),
			strconv.FormatFloat(s.TotalInvested, 'f', 2, 64),
			strconv.FormatFloat(s.TotalUnits, 'f', 8, 64),
			strconv.FormatFloat(s.PortfolioValue, 'f', 2, 64),
			"", "",
		}
		if i < len(traj.Events) {
			ev := traj.Events[i]
			row[4] = strconv.FormatFloat(ev.AmountInvested, 'f', 2, 64)
			row[5] = strconv.FormatFloat(ev.Price, 'f', 6, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// Package-level convenience function
func WriteTrajectoryCSV(traj *backtest.Trajectory, path string) error {
	return NewCSVReporter().WriteTrajectory(traj, path)
}
