package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// TestNewPriceSeries_CopiesAndNormalizes tests input copying and date
// normalization to UTC midnight
func TestNewPriceSeries_CopiesAndNormalizes(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	input := []PricePoint{
		{Date: time.Date(2024, 1, 1, 15, 30, 0, 0, loc), Close: 100},
		{Date: time.Date(2024, 1, 2, 9, 0, 0, 0, loc), Close: 101},
	}

	series, err := NewPriceSeries("TEST", input)
	assert.NoError(t, err)

	assert.Equal(t, day("2024-01-01"), series.At(0).Date)
	assert.Equal(t, day("2024-01-02"), series.At(1).Date)

	// Mutating the caller's slice must not affect the series.
	input[0].Close = 999
	assert.Equal(t, 100.0, series.At(0).Close)
}

// TestNewPriceSeries_RejectsBadInput tests constructor validation
func TestNewPriceSeries_RejectsBadInput(t *testing.T) {
	_, err := NewPriceSeries("", []PricePoint{{Date: day("2024-01-01"), Close: 100}})
	assert.Error(t, err, "missing ticker")

	_, err = NewPriceSeries("TEST", []PricePoint{{Date: day("2024-01-01"), Close: 0}})
	assert.Error(t, err, "non-positive close")

	_, err = NewPriceSeries("TEST", []PricePoint{
		{Date: day("2024-01-02"), Close: 100},
		{Date: day("2024-01-01"), Close: 101},
	})
	assert.Error(t, err, "unsorted dates")

	_, err = NewPriceSeries("TEST", []PricePoint{
		{Date: day("2024-01-01"), Close: 100},
		{Date: day("2024-01-01"), Close: 101},
	})
	assert.Error(t, err, "duplicate dates")
}

func gapSeries(t *testing.T) *PriceSeries {
	t.Helper()
	series, err := NewPriceSeries("TEST", []PricePoint{
		{Date: day("2024-01-05"), Close: 100},
		{Date: day("2024-01-08"), Close: 110},
		{Date: day("2024-01-09"), Close: 120},
	})
	assert.NoError(t, err)
	return series
}

// TestResolve_Forward tests forward-fill resolution across a gap
func TestResolve_Forward(t *testing.T) {
	series := gapSeries(t)

	pt, ok := series.Resolve(day("2024-01-06"), ResolveForward)
	assert.True(t, ok)
	assert.Equal(t, day("2024-01-08"), pt.Date)

	pt, ok = series.Resolve(day("2024-01-08"), ResolveForward)
	assert.True(t, ok)
	assert.Equal(t, day("2024-01-08"), pt.Date)

	_, ok = series.Resolve(day("2024-01-10"), ResolveForward)
	assert.False(t, ok, "nothing after the last observation")
}

// TestResolve_Backward tests backward-fill resolution across a gap
func TestResolve_Backward(t *testing.T) {
	series := gapSeries(t)

	pt, ok := series.Resolve(day("2024-01-06"), ResolveBackward)
	assert.True(t, ok)
	assert.Equal(t, day("2024-01-05"), pt.Date)

	pt, ok = series.Resolve(day("2024-01-20"), ResolveBackward)
	assert.True(t, ok)
	assert.Equal(t, day("2024-01-09"), pt.Date)

	_, ok = series.Resolve(day("2024-01-04"), ResolveBackward)
	assert.False(t, ok, "nothing before the first observation")
}

// TestResolve_Exact tests exact-date resolution
func TestResolve_Exact(t *testing.T) {
	series := gapSeries(t)

	pt, ok := series.Resolve(day("2024-01-08"), ResolveExact)
	assert.True(t, ok)
	assert.Equal(t, 110.0, pt.Close)

	_, ok = series.Resolve(day("2024-01-06"), ResolveExact)
	assert.False(t, ok)
}

// TestWindow_Boundaries tests inclusive window slicing
func TestWindow_Boundaries(t *testing.T) {
	series := gapSeries(t)

	w := series.Window(day("2024-01-05"), day("2024-01-08"))
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, day("2024-01-05"), w.Start())
	assert.Equal(t, day("2024-01-08"), w.End())

	assert.Equal(t, 0, series.Window(day("2024-02-01"), day("2024-02-10")).Len())
	assert.Equal(t, 3, series.Window(day("2024-01-01"), day("2024-02-01")).Len())
}

// TestCovers tests range coverage checks
func TestCovers(t *testing.T) {
	series := gapSeries(t)

	assert.True(t, series.Covers(day("2024-01-05"), day("2024-01-09")))
	assert.True(t, series.Covers(day("2024-01-06"), day("2024-01-08")))
	assert.False(t, series.Covers(day("2024-01-04"), day("2024-01-09")))
	assert.False(t, series.Covers(day("2024-01-05"), day("2024-01-10")))

	empty, err := NewPriceSeries("TEST", nil)
	assert.NoError(t, err)
	assert.False(t, empty.Covers(day("2024-01-05"), day("2024-01-09")))
}

// TestDay_Normalizes tests timezone and time-of-day truncation
func TestDay_Normalizes(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 23:30 on Jan 1 in UTC-5 is 04:30 on Jan 2 in UTC.
	in := time.Date(2024, 1, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, day("2024-01-02"), Day(in))
}
