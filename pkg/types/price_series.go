package types

import (
	"fmt"
	"sort"
	"time"
)

// PricePoint is a single daily observation for an asset.
type PricePoint struct {
	Date   time.Time
	Close  float64
	Volume float64
}

// ResolutionPolicy controls how a requested date that falls on a
// non-trading day is mapped to an actual observation.
type ResolutionPolicy int

const (
	// ResolveForward advances to the next available trading day.
	ResolveForward ResolutionPolicy = iota
	// ResolveBackward falls back to the most recent trading day.
	ResolveBackward
	// ResolveExact only matches dates present in the series.
	ResolveExact
)

func (p ResolutionPolicy) String() string {
	switch p {
	case ResolveForward:
		return "forward"
	case ResolveBackward:
		return "backward"
	case ResolveExact:
		return "exact"
	default:
		return "unknown"
	}
}

// PriceSeries holds the ordered price history for one ticker.
// It is read-only after construction so it can be shared across
// concurrent backtest tasks without locking.
type PriceSeries struct {
	ticker string
	points []PricePoint
}

// NewPriceSeries validates and wraps a slice of price points. Dates must be
// strictly increasing with no duplicates. The input slice is copied.
func NewPriceSeries(ticker string, points []PricePoint) (*PriceSeries, error) {
	if ticker == "" {
		return nil, fmt.Errorf("price series requires a ticker")
	}
	owned := make([]PricePoint, len(points))
	copy(owned, points)
	for i := range owned {
		owned[i].Date = Day(owned[i].Date)
		if owned[i].Close <= 0 {
			return nil, fmt.Errorf("non-positive price %.4f at %s", owned[i].Close, owned[i].Date.Format("2006-01-02"))
		}
		if i > 0 && !owned[i-1].Date.Before(owned[i].Date) {
			return nil, fmt.Errorf("dates not strictly increasing at index %d (%s)", i, owned[i].Date.Format("2006-01-02"))
		}
	}
	return &PriceSeries{ticker: ticker, points: owned}, nil
}

// Day truncates a timestamp to UTC midnight. All series dates are stored
// this way so calendar math never trips on time-of-day or zone offsets.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Ticker returns the asset identifier.
func (s *PriceSeries) Ticker() string { return s.ticker }

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.points) }

// At returns the i-th observation.
func (s *PriceSeries) At(i int) PricePoint { return s.points[i] }

// Points returns a copy of all observations in chronological order.
func (s *PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Start returns the earliest covered date.
func (s *PriceSeries) Start() time.Time {
	if len(s.points) == 0 {
		return time.Time{}
	}
	return s.points[0].Date
}

// End returns the latest covered date.
func (s *PriceSeries) End() time.Time {
	if len(s.points) == 0 {
		return time.Time{}
	}
	return s.points[len(s.points)-1].Date
}

// Covers reports whether both dates fall inside the series' covered range.
func (s *PriceSeries) Covers(start, end time.Time) bool {
	if len(s.points) == 0 {
		return false
	}
	start, end = Day(start), Day(end)
	return !start.Before(s.Start()) && !end.After(s.End())
}

// Resolve maps a calendar date to an actual observation according to the
// given policy. The second return value is false when no observation
// satisfies the policy.
func (s *PriceSeries) Resolve(date time.Time, policy ResolutionPolicy) (PricePoint, bool) {
	date = Day(date)
	// index of the first point with Date >= date
	idx := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(date)
	})

	switch policy {
	case ResolveForward:
		if idx < len(s.points) {
			return s.points[idx], true
		}
	case ResolveBackward:
		if idx < len(s.points) && s.points[idx].Date.Equal(date) {
			return s.points[idx], true
		}
		if idx > 0 {
			return s.points[idx-1], true
		}
	case ResolveExact:
		if idx < len(s.points) && s.points[idx].Date.Equal(date) {
			return s.points[idx], true
		}
	}
	return PricePoint{}, false
}

// Window returns a new series restricted to [start, end]. The underlying
// points are shared; both series remain read-only.
func (s *PriceSeries) Window(start, end time.Time) *PriceSeries {
	start, end = Day(start), Day(end)
	lo := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Date.Before(start)
	})
	hi := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(end)
	})
	if lo > hi {
		lo, hi = 0, 0
	}
	return &PriceSeries{ticker: s.ticker, points: s.points[lo:hi]}
}
