package mdx

import (
	"sync"

	"github.com/inful/mdfp"
)

// Cache stores compiled bodies by key. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key string) (CompiledContent, bool)
	Put(key string, c CompiledContent)
}

// CacheKey fingerprints a body together with the registry version, so a
// change to the allow-list never serves stale output.
func CacheKey(registryVersion string, body []byte) string {
	return mdfp.CalculateFingerprintFromParts(registryVersion, string(body))
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	entries sync.Map
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Get(key string) (CompiledContent, bool) {
	v, ok := m.entries.Load(key)
	if !ok {
		return CompiledContent{}, false
	}
	return v.(CompiledContent), true
}

func (m *MemoryCache) Put(key string, c CompiledContent) {
	m.entries.Store(key, c)
}

// Len returns the number of cached bodies.
func (m *MemoryCache) Len() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
