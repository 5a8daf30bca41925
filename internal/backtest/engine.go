package backtest

import (
	"time"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
	"github.com/quantbench/dca-backtest/pkg/types"
)

// SimulationEvent records one executed purchase.
type SimulationEvent struct {
	Date           time.Time // trading day the purchase settled on
	Scheduled      time.Time // calendar date the plan asked for
	AmountInvested float64
	Price          float64
	UnitsAcquired  float64
}

// TrajectorySample is one cumulative snapshot of the portfolio.
type TrajectorySample struct {
	Date           time.Time
	TotalInvested  float64
	TotalUnits     float64
	PortfolioValue float64
}

// Trajectory is the time-stepped output of a backtest run: one sample per
// executed event plus a final valuation sample at the plan's end date.
type Trajectory struct {
	Ticker  string
	Events  []SimulationEvent
	Samples []TrajectorySample
}

// FinalValue returns the portfolio value at the last sample, 0 when empty.
func (t *Trajectory) FinalValue() float64 {
	if len(t.Samples) == 0 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].PortfolioValue
}

// TotalInvested returns the cumulative invested amount, 0 when empty.
func (t *Trajectory) TotalInvested() float64 {
	if len(t.Samples) == 0 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].TotalInvested
}

// Engine simulates an investment plan against a price series. It holds no
// mutable state, so one engine can serve any number of concurrent tasks.
type Engine struct {
	policy types.ResolutionPolicy
}

// NewEngine creates an engine with the default forward-fill resolution
// policy: a contribution scheduled on a non-trading day settles on the
// next available trading day, or is skipped when none remains.
func NewEngine() *Engine {
	return NewEngineWithPolicy(types.ResolveForward)
}

// NewEngineWithPolicy creates an engine with an explicit resolution policy.
func NewEngineWithPolicy(policy types.ResolutionPolicy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the engine's price-resolution policy.
func (e *Engine) Policy() types.ResolutionPolicy { return e.policy }

// Run executes the plan against the series and returns the portfolio
// trajectory. Pure function of its inputs: identical inputs always yield
// an identical trajectory.
func (e *Engine) Run(series *types.PriceSeries, plan InvestmentPlan) (*Trajectory, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if series == nil || series.Len() == 0 {
		return nil, simerrors.NewInsufficientData("engine", "run", "price series is empty")
	}
	if !series.Covers(plan.Start, plan.End) {
		return nil, simerrors.NewInsufficientData("engine", "run",
			"plan range %s..%s outside series coverage %s..%s",
			plan.Start.Format("2006-01-02"), plan.End.Format("2006-01-02"),
			series.Start().Format("2006-01-02"), series.End().Format("2006-01-02"))
	}

	traj := &Trajectory{Ticker: series.Ticker()}
	totalInvested := 0.0
	totalUnits := 0.0
	initialPending := true

	for _, scheduled := range ScheduleDates(series, plan) {
		pt, ok := series.Resolve(scheduled, e.policy)
		if !ok || pt.Date.After(plan.End) {
			// No trading day left for this contribution before the plan
			// ends; the event is skipped, not shifted.
			continue
		}

		// Every executed event carries the periodic contribution; the
		// first one additionally carries the lump initial amount.
		amount := plan.PeriodicAmount
		if initialPending {
			amount += plan.InitialAmount
			initialPending = false
		}
		if amount == 0 {
			continue
		}
		units := amount / pt.Close

		totalInvested += amount
		totalUnits += units

		traj.Events = append(traj.Events, SimulationEvent{
			Date:           pt.Date,
			Scheduled:      scheduled,
			AmountInvested: amount,
			Price:          pt.Close,
			UnitsAcquired:  units,
		})
		traj.Samples = append(traj.Samples, TrajectorySample{
			Date:           pt.Date,
			TotalInvested:  totalInvested,
			TotalUnits:     totalUnits,
			PortfolioValue: totalUnits * pt.Close,
		})
	}

	// Final valuation at the plan's end date, priced on or before it.
	if final, ok := series.Resolve(plan.End, types.ResolveBackward); ok {
		traj.Samples = append(traj.Samples, TrajectorySample{
			Date:           plan.End,
			TotalInvested:  totalInvested,
			TotalUnits:     totalUnits,
			PortfolioValue: totalUnits * final.Close,
		})
	}

	return traj, nil
}
