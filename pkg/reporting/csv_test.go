package reporting

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantbench/dca-backtest/internal/backtest"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	assert.NoError(t, err)
	return rows
}

// TestWriteTrajectory_RowPerSample tests event and valuation rows
func TestWriteTrajectory_RowPerSample(t *testing.T) {
	traj := &backtest.Trajectory{
		Ticker: "SPY",
		Events: []backtest.SimulationEvent{
			{Date: day("2024-01-02"), AmountInvested: 100, Price: 100, UnitsAcquired: 1},
			{Date: day("2024-01-03"), AmountInvested: 100, Price: 110, UnitsAcquired: 100.0 / 110},
		},
		Samples: []backtest.TrajectorySample{
			{Date: day("2024-01-02"), TotalInvested: 100, TotalUnits: 1, PortfolioValue: 100},
			{Date: day("2024-01-03"), TotalInvested: 200, TotalUnits: 1.9090909091, PortfolioValue: 210},
			{Date: day("2024-01-05"), TotalInvested: 200, TotalUnits: 1.9090909091, PortfolioValue: 229.09},
		},
	}

	path := filepath.Join(t.TempDir(), "trajectory.csv")
	assert.NoError(t, WriteTrajectoryCSV(traj, path))

	rows := readRows(t, path)
	assert.Len(t, rows, 4)
	assert.Equal(t, []string{"date", "invested", "units", "value", "event_amount", "event_price"}, rows[0])
	assert.Equal(t, "2024-01-02", rows[1][0])
	assert.Equal(t, "100.00", rows[1][4])
	assert.Equal(t, "110.000000", rows[2][5])

	// The final valuation sample carries no buy.
	assert.Equal(t, "2024-01-05", rows[3][0])
	assert.Equal(t, "", rows[3][4])
	assert.Equal(t, "", rows[3][5])
}

// TestWriteTrajectory_SameDaySettlements tests buys that settle on one trading day
func TestWriteTrajectory_SameDaySettlements(t *testing.T) {
	// Two scheduled contributions forward-resolved across a data gap onto
	// the same trading day must both keep their own row.
	settle := day("2024-01-08")
	traj := &backtest.Trajectory{
		Ticker: "SPY",
		Events: []backtest.SimulationEvent{
			{Date: settle, Scheduled: day("2024-01-06"), AmountInvested: 100, Price: 120, UnitsAcquired: 100.0 / 120},
			{Date: settle, Scheduled: day("2024-01-07"), AmountInvested: 100, Price: 120, UnitsAcquired: 100.0 / 120},
		},
		Samples: []backtest.TrajectorySample{
			{Date: settle, TotalInvested: 100, TotalUnits: 100.0 / 120, PortfolioValue: 100},
			{Date: settle, TotalInvested: 200, TotalUnits: 200.0 / 120, PortfolioValue: 200},
			{Date: day("2024-01-10"), TotalInvested: 200, TotalUnits: 200.0 / 120, PortfolioValue: 216.67},
		},
	}

	path := filepath.Join(t.TempDir(), "trajectory.csv")
	assert.NoError(t, WriteTrajectoryCSV(traj, path))

	rows := readRows(t, path)
	assert.Len(t, rows, 4)
	assert.Equal(t, "100.00", rows[1][4])
	assert.Equal(t, "100.00", rows[2][4])
	assert.Equal(t, "100.00", rows[1][1])
	assert.Equal(t, "200.00", rows[2][1])
}
