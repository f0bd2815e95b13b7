package newsapi

import (
	"sync"
	"time"
)

type feedEntry struct {
	articles  []Article
	fetchedAt time.Time
}

// feedCache keeps the last article list per query for ttl.
type feedCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]feedEntry
}

func newFeedCache(ttl time.Duration) *feedCache {
	return &feedCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]feedEntry),
	}
}

func (c *feedCache) put(key string, articles []Article) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = feedEntry{articles: articles, fetchedAt: now}
	c.evictLocked(now)
	return now
}

// get returns the entry for key unless it expired.
func (c *feedCache) get(key string) (feedEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return feedEntry{}, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, key)
		return feedEntry{}, false
	}
	return e, true
}

func (c *feedCache) evictLocked(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for key, e := range c.entries {
		if now.Sub(e.fetchedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}
