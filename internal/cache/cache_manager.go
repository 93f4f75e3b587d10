package cache

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	gocache "github.com/patrickmn/go-cache"
)

const DefaultNamespace = "default"

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Sets        uint64  `json:"sets"`
	HitRate     float64 `json:"hit_rate"`
	TotalKeys   int     `json:"total_keys"`
	ApproxBytes int     `json:"approx_bytes"`
}

// CacheManager is a namespaced TTL key-value store. Single-process and
// in-memory only; there is no cross-instance coordination. Entries past
// their expiry are treated as absent by every reader even before the
// janitor physically removes them.
type CacheManager struct {
	store *gocache.Cache

	hits   atomic.Uint64
	misses atomic.Uint64
	sets   atomic.Uint64

	mu          sync.Mutex
	tagIndex    map[string]map[string]struct{} // tag key -> composite keys
	keyTags     map[string][]string            // composite key -> tag keys
	tagVersions map[string]uint64              // tag key -> invalidation epoch
	flushEpoch  uint64
}

func NewCacheManager(defaultTTL, cleanupInterval time.Duration) *CacheManager {
	cm := &CacheManager{
		store:       gocache.New(defaultTTL, cleanupInterval),
		tagIndex:    make(map[string]map[string]struct{}),
		keyTags:     make(map[string][]string),
		tagVersions: make(map[string]uint64),
	}
	// Keep the tag index from accumulating keys the janitor already
	// dropped.
	cm.store.OnEvicted(func(key string, _ interface{}) {
		cm.mu.Lock()
		cm.forgetKeyLocked(key)
		cm.mu.Unlock()
	})
	return cm
}

func compositeKey(namespace, key string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + ":" + key
}

// Get returns the cached value, or absent when missing or expired.
func (c *CacheManager) Get(namespace, key string) (interface{}, bool) {
	ck := compositeKey(namespace, key)
	v, found := c.store.Get(ck)
	if !found {
		c.misses.Add(1)
		// A miss for a key we still track means the entry lazily
		// expired; the janitor may never run, so release the tag
		// bookkeeping on the read path too.
		c.mu.Lock()
		_, tracked := c.keyTags[ck]
		if tracked {
			c.forgetKeyLocked(ck)
		}
		c.mu.Unlock()
		if tracked {
			c.store.Delete(ck)
		}
		return nil, false
	}
	c.hits.Add(1)
	return v, true
}

// Set stores value with absolute expiry now+ttl. A non-positive ttl
// stores an entry that is already expired for every subsequent reader.
func (c *CacheManager) Set(namespace, key string, value interface{}, ttl time.Duration) {
	c.SetWithTags(namespace, key, value, ttl)
}

// SetWithTags stores value and registers it under the given invalidation
// tags.
func (c *CacheManager) SetWithTags(namespace, key string, value interface{}, ttl time.Duration, tags ...Tag) {
	c.setTagged(namespace, key, value, ttl, nil, tags)
}

// TagVersions snapshots the invalidation epoch of each tag. A caller
// about to compute a cacheable value captures the versions first and
// hands them to SetWithTagsVersioned, so an invalidation landing during
// the computation is detected instead of overwritten.
func (c *CacheManager) TagVersions(tags ...Tag) []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	versions := make([]uint64, len(tags))
	for i, t := range tags {
		versions[i] = c.tagVersions[t.Key()] + c.flushEpoch
	}
	return versions
}

// SetWithTagsVersioned stores value only when none of the tags have been
// invalidated since versions was captured with TagVersions. Reports
// whether the entry was stored. A write-back losing this race would
// resurrect a pre-mutation snapshot.
func (c *CacheManager) SetWithTagsVersioned(namespace, key string, value interface{}, ttl time.Duration, versions []uint64, tags ...Tag) bool {
	return c.setTagged(namespace, key, value, ttl, versions, tags)
}

func (c *CacheManager) setTagged(namespace, key string, value interface{}, ttl time.Duration, versions []uint64, tags []Tag) bool {
	if ttl <= 0 {
		ttl = time.Nanosecond
	}
	ck := compositeKey(namespace, key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if versions != nil {
		for i, t := range tags {
			if i >= len(versions) || c.tagVersions[t.Key()]+c.flushEpoch != versions[i] {
				return false
			}
		}
	}

	c.store.Set(ck, value, ttl)
	c.sets.Add(1)

	c.forgetKeyLocked(ck)
	if len(tags) > 0 {
		tagKeys := make([]string, len(tags))
		for i, t := range tags {
			tk := t.Key()
			tagKeys[i] = tk
			if c.tagIndex[tk] == nil {
				c.tagIndex[tk] = make(map[string]struct{})
			}
			c.tagIndex[tk][ck] = struct{}{}
		}
		c.keyTags[ck] = tagKeys
	}
	return true
}

// Invalidate removes a single entry.
func (c *CacheManager) Invalidate(namespace, key string) {
	ck := compositeKey(namespace, key)
	c.store.Delete(ck)
	c.mu.Lock()
	c.forgetKeyLocked(ck)
	c.mu.Unlock()
}

// InvalidatePattern removes every entry whose composite key matches the
// wildcard glob. Returns the number of entries removed.
func (c *CacheManager) InvalidatePattern(pattern string) int {
	removed := 0
	for key := range c.store.Items() {
		ok, err := doublestar.Match(pattern, key)
		if err != nil {
			return removed
		}
		if ok {
			c.store.Delete(key)
			c.mu.Lock()
			c.forgetKeyLocked(key)
			c.mu.Unlock()
			removed++
		}
	}
	return removed
}

// InvalidateTag removes every entry registered under the tag. Subsequent
// reads in that group fall through to the source of truth. Bumping the
// tag version also blocks write-backs of values computed before this
// call.
func (c *CacheManager) InvalidateTag(tag Tag) int {
	tk := tag.Key()

	c.mu.Lock()
	c.tagVersions[tk]++
	keys := make([]string, 0, len(c.tagIndex[tk]))
	for k := range c.tagIndex[tk] {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.store.Delete(k)
		c.mu.Lock()
		c.forgetKeyLocked(k)
		c.mu.Unlock()
	}
	return len(keys)
}

// Flush drops every entry and resets the tag index. Stats counters are
// preserved. The epoch bump invalidates every outstanding version
// snapshot, including tags never individually invalidated.
func (c *CacheManager) Flush() {
	c.store.Flush()
	c.mu.Lock()
	c.tagIndex = make(map[string]map[string]struct{})
	c.keyTags = make(map[string][]string)
	c.flushEpoch++
	c.mu.Unlock()
}

// Stats reports hit/miss counters and an approximate memory footprint
// (key bytes plus JSON-encoded value bytes of live entries).
func (c *CacheManager) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	items := c.store.Items()
	approx := 0
	for key, item := range items {
		approx += len(key)
		if encoded, err := json.Marshal(item.Object); err == nil {
			approx += len(encoded)
		}
	}

	return Stats{
		Hits:        hits,
		Misses:      misses,
		Sets:        c.sets.Load(),
		HitRate:     hitRate,
		TotalKeys:   len(items),
		ApproxBytes: approx,
	}
}

// caller must hold c.mu
func (c *CacheManager) forgetKeyLocked(ck string) {
	for _, tk := range c.keyTags[ck] {
		delete(c.tagIndex[tk], ck)
		if len(c.tagIndex[tk]) == 0 {
			delete(c.tagIndex, tk)
		}
	}
	delete(c.keyTags, ck)
}
