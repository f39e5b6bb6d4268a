package jwks

import (
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Cache holds the most recently fetched key set and when it was fetched.
// It is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu        sync.RWMutex
	set       jwk.Set
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewCache creates a key set cache whose contents stay fresh for ttl.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now}
}

// Get returns the cached set and whether it is still fresh.
// The set is nil if nothing has been fetched yet.
func (c *Cache) Get() (jwk.Set, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.set == nil {
		return nil, false
	}
	return c.set, c.now().Before(c.fetchedAt.Add(c.ttl))
}

// Set replaces the cached set and stamps it with the current time.
func (c *Cache) Set(set jwk.Set) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.set = set
	c.fetchedAt = c.now()
}
