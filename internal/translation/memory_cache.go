package translation

import (
	"strings"
	"sync"

	"github.com/avrentals/backend/internal/metrics"
)

// cacheKey builds the process-local cache key. The NUL separator cannot
// occur in a language tag, so keys never collide across languages.
func cacheKey(text, lang string) string {
	return lang + "\x00" + text
}

// MemoryCache is the process-local mirror of translation store entries seen
// so far. It is unbounded within a process lifetime: the working set is the
// distinct UI strings of the application, not data volume. There is no TTL;
// staleness is handled by explicit invalidation after admin edits.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get returns the cached translation for (text, lang), if present.
func (c *MemoryCache) Get(text, lang string) (string, bool) {
	c.mu.RLock()
	v, ok := c.entries[cacheKey(text, lang)]
	c.mu.RUnlock()

	if ok {
		metrics.MemoryCacheHits.Inc()
	} else {
		metrics.MemoryCacheMisses.Inc()
	}
	return v, ok
}

// Set writes through a resolved translation.
func (c *MemoryCache) Set(text, lang, translated string) {
	c.mu.Lock()
	c.entries[cacheKey(text, lang)] = translated
	c.mu.Unlock()
}

// Delete evicts a single entry. Called after admin edits or deletes so the
// next lookup re-reads the store.
func (c *MemoryCache) Delete(text, lang string) {
	c.mu.Lock()
	delete(c.entries, cacheKey(text, lang))
	c.mu.Unlock()
}

// Invalidate clears the cache, optionally scoped to one target language.
// The durable store is untouched.
func (c *MemoryCache) Invalidate(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lang == "" {
		c.entries = make(map[string]string)
		return
	}

	prefix := lang + "\x00"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
