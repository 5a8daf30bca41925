package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
)

// TestAggregateResults_Averages tests averaging over successful tasks
func TestAggregateResults_Averages(t *testing.T) {
	results := map[string]TaskResult{
		"a": {TaskID: "a", Ticker: "TEST", Result: &Result{
			TotalInvested: 100, FinalValue: 110, PercentGain: 10, MonthlyReturn: 2, MaxDrawdownPct: -5,
		}},
		"b": {TaskID: "b", Ticker: "TEST", Result: &Result{
			TotalInvested: 100, FinalValue: 130, PercentGain: 30, MonthlyReturn: 4, MaxDrawdownPct: -15,
		}},
	}

	agg := AggregateResults(results)
	assert.Equal(t, "TEST", agg.Ticker)
	assert.Equal(t, 2, agg.Runs)
	assert.Equal(t, 0, agg.Failed)
	assert.InDelta(t, 20.0, agg.AvgPercentGain, 1e-9)
	assert.InDelta(t, 3.0, agg.AvgMonthlyReturn, 1e-9)
	assert.InDelta(t, -10.0, agg.AvgMaxDrawdown, 1e-9)
	assert.InDelta(t, 120.0, agg.AvgFinalValue, 1e-9)
}

// TestAggregateResults_ExcludesFailures tests that failed tasks are
// counted but never skew the averages
func TestAggregateResults_ExcludesFailures(t *testing.T) {
	results := map[string]TaskResult{
		"ok": {TaskID: "ok", Ticker: "TEST", Result: &Result{PercentGain: 10}},
		"bad": {TaskID: "bad", Ticker: "TEST",
			Err: simerrors.NewInsufficientData("engine", "run", "no coverage")},
	}

	agg := AggregateResults(results)
	assert.Equal(t, 2, agg.Runs)
	assert.Equal(t, 1, agg.Failed)
	assert.InDelta(t, 10.0, agg.AvgPercentGain, 1e-9)
}

// TestAggregateResults_AllFailed tests the all-failures batch
func TestAggregateResults_AllFailed(t *testing.T) {
	results := map[string]TaskResult{
		"bad": {TaskID: "bad", Ticker: "TEST",
			Err: simerrors.NewInsufficientData("engine", "run", "no coverage")},
	}

	agg := AggregateResults(results)
	assert.Equal(t, 1, agg.Runs)
	assert.Equal(t, 1, agg.Failed)
	assert.Equal(t, 0.0, agg.AvgPercentGain)
}

// TestAggregateResults_Empty tests the empty mapping
func TestAggregateResults_Empty(t *testing.T) {
	agg := AggregateResults(nil)
	assert.Equal(t, 0, agg.Runs)
	assert.Equal(t, 0, agg.Failed)
}
