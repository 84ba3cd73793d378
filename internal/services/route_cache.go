package services

import (
	"crypto/md5"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// routeCache memoizes per-mode route lookups so re-selecting a travel mode or
// re-running synthesis over an unchanged day does not re-query the API.
type routeCache struct {
	entries    map[string]*cachedRoute
	mu         sync.RWMutex
	maxEntries int
	ttl        time.Duration
}

type cachedRoute struct {
	result    RouteResult
	createdAt time.Time
}

func newRouteCache() *routeCache {
	return &routeCache{
		entries:    make(map[string]*cachedRoute),
		maxEntries: 1000,
		ttl:        time.Hour,
	}
}

// key builds a lookup key from the endpoints, mode and departure bucket.
// Coordinates are quantized to ~10m so GPS jitter between lookups still hits
// the cache.
func (c *routeCache) key(origin, dest RoutePoint, mode TravelMode, departure *time.Time) string {
	raw := fmt.Sprintf("%s_%s_%s_%s", pointSignature(origin), pointSignature(dest), mode, departureBucket(mode, departure))
	hash := md5.Sum([]byte(raw))
	return fmt.Sprintf("%x", hash[:8])
}

func pointSignature(p RoutePoint) string {
	if p.Lat != nil && p.Lng != nil {
		return fmt.Sprintf("%.4f,%.4f", *p.Lat, *p.Lng)
	}
	return p.Address
}

// departureBucket quantizes the departure to 15-minute buckets for the modes
// whose durations depend on it. Walking and cycling are departure-independent
// and share one bucket.
func departureBucket(mode TravelMode, departure *time.Time) string {
	if departure == nil || (mode != ModeTransit && mode != ModeDrive) {
		return "-"
	}
	return strconv.FormatInt(departure.UTC().Truncate(15*time.Minute).Unix(), 10)
}

func (c *routeCache) Get(origin, dest RoutePoint, mode TravelMode, departure *time.Time) (*RouteResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[c.key(origin, dest, mode, departure)]
	c.mu.RUnlock()
	if !ok || time.Since(entry.createdAt) > c.ttl {
		return nil, false
	}
	result := entry.result
	return &result, true
}

func (c *routeCache) Put(origin, dest RoutePoint, mode TravelMode, departure *time.Time, result *RouteResult) {
	if result == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		// Drop the oldest entry to stay bounded.
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey = k
				oldest = e.createdAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[c.key(origin, dest, mode, departure)] = &cachedRoute{result: *result, createdAt: time.Now()}
}
