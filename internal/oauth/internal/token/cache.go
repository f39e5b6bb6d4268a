package token

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntry is a memoised validation outcome. Exactly one of identity
// and err is set.
type cacheEntry struct {
	identity  *Identity
	err       error
	expiresAt time.Time
}

// ResultCache memoises validation outcomes keyed by token hash for a fixed
// wall-clock window. It is bounded and evicts least recently used entries.
// A zero TTL disables it.
type ResultCache struct {
	entries *lru.Cache[string, cacheEntry]
	ttl     time.Duration
	now     func() time.Time
}

// NewResultCache creates a cache holding at most size outcomes for ttl.
func NewResultCache(size int, ttl time.Duration, now func() time.Time) (*ResultCache, error) {
	if now == nil {
		now = time.Now
	}
	c := &ResultCache{ttl: ttl, now: now}
	if ttl <= 0 {
		return c, nil
	}
	if size <= 0 {
		size = 1024
	}

	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create token cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// Get returns the unexpired entry for hash. Expired entries are removed.
func (c *ResultCache) Get(hash string) (cacheEntry, bool) {
	if c.entries == nil {
		return cacheEntry{}, false
	}

	entry, ok := c.entries.Get(hash)
	if !ok {
		return cacheEntry{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.entries.Remove(hash)
		return cacheEntry{}, false
	}
	return entry, true
}

// StoreSuccess caches identity until the earlier of the TTL and the token's
// own expiry. Identities with no remaining lifetime are not cached.
func (c *ResultCache) StoreSuccess(hash string, identity *Identity) {
	if c.entries == nil || identity == nil {
		return
	}

	expiresAt := c.now().Add(c.ttl)
	if identity.ExpiresAt.Before(expiresAt) {
		expiresAt = identity.ExpiresAt
	}
	if !c.now().Before(expiresAt) {
		return
	}
	c.entries.Add(hash, cacheEntry{identity: identity, expiresAt: expiresAt})
}

// StoreFailure caches a terminal credential failure for the full TTL.
func (c *ResultCache) StoreFailure(hash string, err error) {
	if c.entries == nil || err == nil {
		return
	}
	c.entries.Add(hash, cacheEntry{err: err, expiresAt: c.now().Add(c.ttl)})
}

// Remove drops the entry for hash.
func (c *ResultCache) Remove(hash string) {
	if c.entries == nil {
		return
	}
	c.entries.Remove(hash)
}

// Len returns the number of entries, including ones not yet found expired.
func (c *ResultCache) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}
