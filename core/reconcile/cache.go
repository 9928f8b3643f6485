package reconcile

import (
	"context"
	"sync"
	"time"

	"customer-sync/core/customer"

	"golang.org/x/sync/singleflight"
)

// CandidateCache holds a loaded candidate list.
type CandidateCache struct {
	// Candidates is the list returned by the source.
	Candidates []customer.Customer

	// Built is the timestamp when this cache was built.
	Built time.Time

	// TTL is the time-to-live for this cache.
	TTL time.Duration
}

// IsExpired returns true if this cache has expired based on its TTL.
func (c *CandidateCache) IsExpired() bool {
	if c.TTL == 0 {
		return true // No caching
	}
	return time.Since(c.Built) > c.TTL
}

// cacheStore holds candidate caches keyed by source name.
type cacheStore struct {
	mu     sync.RWMutex
	caches map[string]*CandidateCache
	sf     singleflight.Group
}

var globalCacheStore = &cacheStore{
	caches: make(map[string]*CandidateCache),
}

// GetOrLoad returns the cached candidates for src, loading them when absent
// or expired. A zero ttl bypasses the cache. Concurrent callers share a
// single load.
func GetOrLoad(ctx context.Context, src Source, ttl time.Duration) ([]customer.Customer, error) {
	if ttl <= 0 {
		return src.Load(ctx)
	}

	cacheKey := src.Name()

	// Fast path: check if cache exists and is fresh
	globalCacheStore.mu.RLock()
	cache, exists := globalCacheStore.caches[cacheKey]
	globalCacheStore.mu.RUnlock()

	if exists && !cache.IsExpired() {
		return cache.Candidates, nil
	}

	// Slow path: load using singleflight to prevent stampedes
	result, err, _ := globalCacheStore.sf.Do(cacheKey, func() (interface{}, error) {
		globalCacheStore.mu.RLock()
		cache, exists := globalCacheStore.caches[cacheKey]
		globalCacheStore.mu.RUnlock()

		if exists && !cache.IsExpired() {
			return cache, nil
		}

		candidates, err := src.Load(ctx)
		if err != nil {
			return nil, err
		}

		newCache := &CandidateCache{
			Candidates: candidates,
			Built:      time.Now(),
			TTL:        ttl,
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.caches[cacheKey] = newCache
		globalCacheStore.mu.Unlock()

		return newCache, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*CandidateCache).Candidates, nil
}

// InvalidateCache removes the cached candidates of the named source.
func InvalidateCache(name string) {
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.caches, name)
	globalCacheStore.mu.Unlock()
}
