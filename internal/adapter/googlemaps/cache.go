package googlemaps

import (
	"context"
	"fmt"

	"github.com/couchcryptid/resource-finder-geocode/internal/domain"
	"github.com/couchcryptid/resource-finder-geocode/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. Only
// successful results are cached, so failures are always retried upstream.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru.Cache[string, domain.GeocodeResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator holding at most maxEntries
// results. maxEntries must be positive.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) (*CachedGeocoder, error) {
	cache, err := lru.New[string, domain.GeocodeResult](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create geocode cache: %w", err)
	}
	return &CachedGeocoder{inner: inner, cache: cache, metrics: metrics}, nil
}

// Forward serves address lookups from the cache when possible.
// The explicit key is part of the cache key so callers with different keys
// never share entries.
func (c *CachedGeocoder) Forward(ctx context.Context, address, apiKey string) domain.GeocodeResult {
	key := fmt.Sprintf("fwd:%s|%s", address, apiKey)
	return c.lookup(key, domain.MethodForward, func() domain.GeocodeResult {
		return c.inner.Forward(ctx, address, apiKey)
	})
}

// Reverse serves coordinate lookups from the cache when possible.
func (c *CachedGeocoder) Reverse(ctx context.Context, lat, lon float64, apiKey string) domain.GeocodeResult {
	key := fmt.Sprintf("rev:%s|%s", domain.FormatLatLng(lat, lon), apiKey)
	return c.lookup(key, domain.MethodReverse, func() domain.GeocodeResult {
		return c.inner.Reverse(ctx, lat, lon, apiKey)
	})
}

// lookup hands out copies so callers can't mutate a cached Match.
func (c *CachedGeocoder) lookup(key string, method domain.Method, fetch func() domain.GeocodeResult) domain.GeocodeResult {
	if result, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues(string(method), "hit").Inc()
		return result.Clone()
	}
	c.metrics.GeocodeCache.WithLabelValues(string(method), "miss").Inc()

	result := fetch()
	if result.OK {
		c.cache.Add(key, result.Clone())
	}
	return result
}

// Len reports the number of cached results.
func (c *CachedGeocoder) Len() int {
	return c.cache.Len()
}
