package backtest

import (
	"fmt"
	"strings"
	"time"

	simerrors "github.com/quantbench/dca-backtest/internal/errors"
	"github.com/quantbench/dca-backtest/pkg/types"
)

// Frequency is the cadence of periodic contributions.
type Frequency int

const (
	FrequencyDaily Frequency = iota
	FrequencyWeekly
	FrequencyMonthly
)

func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// ParseFrequency converts a config string into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "d":
		return FrequencyDaily, nil
	case "weekly", "w":
		return FrequencyWeekly, nil
	case "monthly", "m":
		return FrequencyMonthly, nil
	default:
		return 0, simerrors.NewInvalidParameter("plan", "parse_frequency",
			"unsupported frequency %q (use daily, weekly or monthly)", s)
	}
}

// InvestmentPlan describes one DCA schedule. Value object; construct it,
// validate it, never mutate it.
type InvestmentPlan struct {
	Start          time.Time
	End            time.Time
	InitialAmount  float64
	PeriodicAmount float64
	Frequency      Frequency
}

// NewInvestmentPlan builds a validated plan. Dates are normalized to
// UTC midnight.
func NewInvestmentPlan(start, end time.Time, initial, periodic float64, freq Frequency) (InvestmentPlan, error) {
	p := InvestmentPlan{
		Start:          types.Day(start),
		End:            types.Day(end),
		InitialAmount:  initial,
		PeriodicAmount: periodic,
		Frequency:      freq,
	}
	if err := p.Validate(); err != nil {
		return InvestmentPlan{}, err
	}
	return p, nil
}

// Validate checks the plan's structural invariants.
func (p InvestmentPlan) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return simerrors.NewInvalidParameter("plan", "validate", "start and end dates are required")
	}
	if p.End.Before(p.Start) {
		return simerrors.NewInvalidParameter("plan", "validate",
			"end date %s precedes start date %s",
			p.End.Format("2006-01-02"), p.Start.Format("2006-01-02"))
	}
	if p.InitialAmount < 0 {
		return simerrors.NewInvalidParameter("plan", "validate", "initial amount %.2f is negative", p.InitialAmount)
	}
	if p.PeriodicAmount < 0 {
		return simerrors.NewInvalidParameter("plan", "validate", "periodic amount %.2f is negative", p.PeriodicAmount)
	}
	if p.Frequency < FrequencyDaily || p.Frequency > FrequencyMonthly {
		return simerrors.NewInvalidParameter("plan", "validate", "unknown frequency %d", p.Frequency)
	}
	return nil
}

func (p InvestmentPlan) String() string {
	return fmt.Sprintf("%s %s..%s initial=%.2f periodic=%.2f",
		p.Frequency, p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"),
		p.InitialAmount, p.PeriodicAmount)
}

// ScheduleDates generates the chronological contribution dates for a plan
// against a series. Daily plans invest on every trading day inside the
// range; weekly plans step 7 calendar days from the start; monthly plans
// keep the start's day-of-month, clamped to shorter months.
func ScheduleDates(series *types.PriceSeries, plan InvestmentPlan) []time.Time {
	var dates []time.Time

	switch plan.Frequency {
	case FrequencyDaily:
		for _, pt := range series.Window(plan.Start, plan.End).Points() {
			dates = append(dates, pt.Date)
		}
	case FrequencyWeekly:
		for d := plan.Start; !d.After(plan.End); d = d.AddDate(0, 0, 7) {
			dates = append(dates, d)
		}
	case FrequencyMonthly:
		anchor := plan.Start.Day()
		for i := 0; ; i++ {
			d := addMonthsClamped(plan.Start, i, anchor)
			if d.After(plan.End) {
				break
			}
			dates = append(dates, d)
		}
	}
	return dates
}

// addMonthsClamped returns start + months, holding the anchor day-of-month
// and clamping to the target month's length (Jan 31 + 1mo = Feb 28/29).
func addMonthsClamped(start time.Time, months, anchor int) time.Time {
	y, m, _ := start.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := anchor
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
