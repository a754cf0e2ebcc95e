package registry

import (
	"sync"
	"time"
)

// listingCache holds dynamic provider listings with a TTL per provider. A
// stale entry keeps serving until the next successful refresh replaces it,
// so transient listing failures never shrink the registry.
type listingCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]listingEntry
}

type listingEntry struct {
	ids       []string
	fetchedAt time.Time
}

func newListingCache(ttl time.Duration) *listingCache {
	return &listingCache{
		ttl:     ttl,
		entries: make(map[string]listingEntry),
	}
}

func (c *listingCache) setTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// stale reports whether a provider's listing should be fetched again.
func (c *listingCache) stale(provider string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[provider]
	if !ok {
		return true
	}
	return time.Since(entry.fetchedAt) >= c.ttl
}

func (c *listingCache) put(provider string, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[provider] = listingEntry{ids: ids, fetchedAt: time.Now()}
}

// all returns the cached listings keyed by provider.
func (c *listingCache) all() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string][]string, len(c.entries))
	for provider, entry := range c.entries {
		out[provider] = entry.ids
	}
	return out
}
