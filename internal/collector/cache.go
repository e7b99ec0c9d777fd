package collector

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"VRSentinel/internal/metrics"
	"VRSentinel/internal/model"
	"VRSentinel/internal/store"
)

// SeriesCache memoizes fetched series by (symbol, start, end).
// Capacity 0 keeps every entry for the lifetime of the process; a positive
// capacity evicts least recently used entries. Entries are immutable once stored
// and only successful fetches are cached.
type SeriesCache struct {
	mu    sync.RWMutex
	items map[model.SeriesKey]model.CachedSeries
	lru   *lru.Cache[model.SeriesKey, model.CachedSeries]

	store   store.SeriesStore
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewSeriesCache builds a cache; st may be nil.
func NewSeriesCache(capacity int, st store.SeriesStore, m *metrics.Metrics, log zerolog.Logger) (*SeriesCache, error) {
	c := &SeriesCache{
		store:   st,
		metrics: m,
		log:     log.With().Str("component", "cache").Logger(),
	}
	if capacity > 0 {
		l, err := lru.New[model.SeriesKey, model.CachedSeries](capacity)
		if err != nil {
			return nil, err
		}
		c.lru = l
	} else {
		c.items = make(map[model.SeriesKey]model.CachedSeries)
	}
	return c, nil
}

// Get returns a cached entry from memory.
func (c *SeriesCache) Get(key model.SeriesKey) (model.CachedSeries, bool) {
	if c.lru != nil {
		return c.lru.Get(key)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	return e, ok
}

func (c *SeriesCache) put(key model.SeriesKey, entry model.CachedSeries) {
	if c.lru != nil {
		c.lru.Add(key, entry)
		return
	}
	c.mu.Lock()
	c.items[key] = entry
	c.mu.Unlock()
}

// GetOrFetch consults memory, then the store, then calls fetch.
// Concurrent misses for the same key may both call fetch; either result is valid.
func (c *SeriesCache) GetOrFetch(ctx context.Context, key model.SeriesKey,
	fetch func(ctx context.Context) (model.CachedSeries, error)) (model.CachedSeries, error) {
	if e, ok := c.Get(key); ok {
		c.metrics.ObserveCache(metrics.CacheMemoryHit)
		return e, nil
	}

	if c.store != nil {
		e, ok, err := c.store.Load(ctx, key)
		if err != nil {
			c.log.Warn().Err(err).Str("key", key.String()).Msg("store load failed")
		} else if ok {
			c.metrics.ObserveCache(metrics.CacheStoreHit)
			c.put(key, e)
			return e, nil
		}
	}

	c.metrics.ObserveCache(metrics.CacheMiss)
	e, err := fetch(ctx)
	if err != nil {
		return model.CachedSeries{}, err
	}
	c.put(key, e)
	if c.store != nil {
		if err := c.store.Save(ctx, key, e); err != nil {
			c.log.Warn().Err(err).Str("key", key.String()).Msg("store save failed")
		}
	}
	return e, nil
}

func (c *SeriesCache) Len() int {
	if c.lru != nil {
		return c.lru.Len()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge drops every in-memory entry. The store is left untouched.
func (c *SeriesCache) Purge() {
	if c.lru != nil {
		c.lru.Purge()
		return
	}
	c.mu.Lock()
	c.items = make(map[model.SeriesKey]model.CachedSeries)
	c.mu.Unlock()
}
