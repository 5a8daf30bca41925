package backtest

import (
	"math"
	"time"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
	"github.com/quantbench/dca-backtest/pkg/types"
)

// daysPerMonth converts elapsed days to equivalent months for the
// compounding math (365.25 / 12).
const daysPerMonth = 30.44

// Result is the summary of one backtest, derived from a trajectory.
// Immutable once produced.
type Result struct {
	Ticker string
	Start  time.Time
	End    time.Time

	TotalInvested  float64
	FinalValue     float64
	TotalUnits     float64
	ExecutedEvents int

	AbsoluteGain  float64
	PercentGain   float64
	MonthlyReturn float64 // monthly-equivalent compounded return, percent

	MaxDrawdownPct   float64 // most negative peak-to-sample drop of portfolio value, in [-100, 0]
	PriceDrawdownPct float64 // same measure over the raw price series

	BuyAndHoldValue   float64
	BuyAndHoldGainPct float64
	BuyAndHoldMonthly float64
}

// Calculator derives summary statistics from trajectories. The buy-and-hold
// comparison resolves prices with the same policy as the engine so the two
// strategies are priced fairly.
type Calculator struct {
	policy types.ResolutionPolicy
}

// NewCalculator creates a calculator using the forward-fill policy.
func NewCalculator() *Calculator {
	return NewCalculatorWithPolicy(types.ResolveForward)
}

// NewCalculatorWithPolicy creates a calculator with an explicit policy.
func NewCalculatorWithPolicy(policy types.ResolutionPolicy) *Calculator {
	return &Calculator{policy: policy}
}

// Summarize computes the backtest result for a trajectory.
func (c *Calculator) Summarize(series *types.PriceSeries, plan InvestmentPlan, traj *Trajectory) (*Result, error) {
	if traj == nil || len(traj.Samples) == 0 {
		return nil, simerrors.NewInvalidTrajectory("metrics", "summarize", "trajectory has no samples")
	}

	invested := traj.TotalInvested()
	finalValue := traj.FinalValue()
	last := traj.Samples[len(traj.Samples)-1]

	res := &Result{
		Ticker:         traj.Ticker,
		Start:          plan.Start,
		End:            plan.End,
		TotalInvested:  invested,
		FinalValue:     finalValue,
		TotalUnits:     last.TotalUnits,
		ExecutedEvents: len(traj.Events),
		AbsoluteGain:   finalValue - invested,
	}
	if invested > 0 {
		res.PercentGain = res.AbsoluteGain / invested * 100
	}

	months := elapsedMonths(plan.Start, plan.End)
	res.MonthlyReturn = monthlyEquivalent(finalValue, invested, months)
	res.MaxDrawdownPct = maxDrawdown(valueSeries(traj.Samples))
	if series != nil {
		res.PriceDrawdownPct = maxDrawdown(closeSeries(series.Window(plan.Start, plan.End)))

		bh, ok := c.buyAndHold(series, plan, invested)
		if ok {
			res.BuyAndHoldValue = bh
			if invested > 0 {
				res.BuyAndHoldGainPct = (bh - invested) / invested * 100
			}
			res.BuyAndHoldMonthly = monthlyEquivalent(bh, invested, months)
		}
	}

	return res, nil
}

// buyAndHold values a single lump investment of the full amount at the
// plan's resolved start price, held until the resolved end price.
func (c *Calculator) buyAndHold(series *types.PriceSeries, plan InvestmentPlan, invested float64) (float64, bool) {
	if invested <= 0 {
		return 0, false
	}
	entry, ok := series.Resolve(plan.Start, c.policy)
	if !ok || entry.Date.After(plan.End) {
		return 0, false
	}
	exit, ok := series.Resolve(plan.End, types.ResolveBackward)
	if !ok {
		return 0, false
	}
	return invested / entry.Close * exit.Close, true
}

// elapsedMonths converts the plan span to equivalent months, floored at 1
// so the compounding identity never divides by zero.
func elapsedMonths(start, end time.Time) float64 {
	months := end.Sub(start).Hours() / 24 / daysPerMonth
	if months < 1 {
		return 1
	}
	return months
}

// monthlyEquivalent solves finalValue = invested * (1+r)^months for r,
// returned as a percentage. Zero when the inputs make the identity
// unsolvable.
func monthlyEquivalent(finalValue, invested, months float64) float64 {
	if invested <= 0 || finalValue <= 0 || months <= 0 {
		return 0
	}
	return (math.Pow(finalValue/invested, 1/months) - 1) * 100
}

// maxDrawdown returns the most negative percentage drop from a running
// peak, in [-100, 0]. A non-decreasing series scores 0.
func maxDrawdown(values []float64) float64 {
	worst := 0.0
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (v - peak) / peak * 100; dd < worst {
			worst = dd
		}
	}
	return worst
}

func valueSeries(samples []TrajectorySample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.PortfolioValue
	}
	return out
}

func closeSeries(series *types.PriceSeries) []float64 {
	out := make([]float64, 0, series.Len())
	for _, pt := range series.Points() {
		out = append(out, pt.Close)
	}
	return out
}
