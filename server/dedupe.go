package server

import (
	"sync"
	"time"
)

type cacheEntry struct {
	response []byte
	expiry   time.Time
}

// ResponseCache is the server half of at-most-once semantics: it remembers
// the encoded response of each requestId for a TTL, so a retransmission of
// the same request is answered from cache instead of executed again.
//
// Keyed by requestId alone, matching the reference server — clients seed
// their id sequences randomly to keep cross-client collisions unlikely.
type ResponseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint32]cacheEntry
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		ttl:     ttl,
		entries: make(map[uint32]cacheEntry),
	}
}

// Get returns the cached response for requestID if present and unexpired.
func (c *ResponseCache) Get(requestID uint32, now time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[requestID]
	if !ok || !e.expiry.After(now) {
		return nil, false
	}
	return e.response, true
}

// Put caches the response for requestID until the TTL elapses.
func (c *ResponseCache) Put(requestID uint32, response []byte, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[requestID] = cacheEntry{response: response, expiry: now.Add(c.ttl)}
}

// Sweep drops expired entries.
func (c *ResponseCache) Sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entries {
		if !e.expiry.After(now) {
			delete(c.entries, id)
		}
	}
}
