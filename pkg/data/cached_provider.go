package data

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantbench/dca-backtest/pkg/types"
)

// MemoryCache implements Cache with an in-memory map. Series are
// immutable, so hits return the stored pointer directly.
type MemoryCache struct {
	mu    sync.RWMutex
	cache map[CacheKey]*types.PriceSeries
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{cache: make(map[CacheKey]*types.PriceSeries)}
}

// Get retrieves a cached series if present.
func (c *MemoryCache) Get(key CacheKey) (*types.PriceSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	series, ok := c.cache[key]
	return series, ok
}

// Set stores a series.
func (c *MemoryCache) Set(key CacheKey, series *types.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = series
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[CacheKey]*types.PriceSeries)
}

// Size returns the number of cached entries.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// CachedProvider decorates another Provider with a cache keyed by
// (ticker, range), so a batch of tasks referencing the same series hits
// the upstream source once.
type CachedProvider struct {
	provider Provider
	cache    Cache
	logger   zerolog.Logger
}

// NewCachedProvider wraps a provider with an in-memory cache.
func NewCachedProvider(provider Provider) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache())
}

// NewCachedProviderWithCache wraps a provider with a custom cache.
func NewCachedProviderWithCache(provider Provider, cache Cache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		logger:   log.With().Str("component", "cached_provider").Logger(),
	}
}

// Name implements Provider.
func (p *CachedProvider) Name() string { return "cached " + p.provider.Name() }

// Fetch implements Provider.
func (p *CachedProvider) Fetch(ctx context.Context, ticker string, start, end time.Time) (*types.PriceSeries, error) {
	key := NewCacheKey(ticker, start, end)
	if series, ok := p.cache.Get(key); ok {
		return series, nil
	}

	series, err := p.provider.Fetch(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, series)
	p.logger.Debug().Str("ticker", ticker).Int("bars", series.Len()).Msg("cached series")
	return series, nil
}

// Cache exposes the underlying cache for management.
func (p *CachedProvider) Cache() Cache { return p.cache }
