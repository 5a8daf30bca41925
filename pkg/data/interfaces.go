package data

import (
	"context"
	"time"

	"github.com/quantbench/dca-backtest/pkg/types"
)

// Provider supplies historical daily price series.
type Provider interface {
	// Fetch loads the series for a ticker restricted to [start, end].
	Fetch(ctx context.Context, ticker string, start, end time.Time) (*types.PriceSeries, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// CacheKey identifies one fetched series. Caching is keyed by ticker and
// requested range rather than by ambient per-ticker state, so two
// overlapping requests never alias each other.
type CacheKey struct {
	Ticker string
	Start  time.Time
	End    time.Time
}

// NewCacheKey normalizes the dates to UTC midnight.
func NewCacheKey(ticker string, start, end time.Time) CacheKey {
	return CacheKey{Ticker: ticker, Start: types.Day(start), End: types.Day(end)}
}

// Cache stores fetched series. Series are immutable, so implementations
// may share them by reference.
type Cache interface {
	Get(key CacheKey) (*types.PriceSeries, bool)
	Set(key CacheKey, series *types.PriceSeries)
	Clear()
	Size() int
}
