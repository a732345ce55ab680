// internal/cache/cache.go

// Package cache holds extracted components in memory so repeated extractions
// of the same URL/selector/options tuple skip the browser entirely.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/snip/pkg/models"
)

// Config bounds the cache.
type Config struct {
	MaxEntries    int
	MaxEntryBytes int64
	MaxTotalBytes int64
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

type entry struct {
	key         string
	component   *models.CompleteComponent
	size        int64
	storedAt    time.Time
	ttl         time.Duration
	lastAccess  time.Time
	accessCount int64
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Entries    int     `json:"entries"`
	TotalBytes int64   `json:"total_bytes"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// ComponentCache is an LRU cache with per-entry TTL. TTL is fixed at write
// time; reads refresh recency for eviction but never extend lifetime.
type ComponentCache struct {
	mu         sync.Mutex
	cfg        Config
	entries    map[string]*list.Element
	lru        *list.List // front = most recently used
	totalBytes int64

	hits   atomic.Int64
	misses atomic.Int64

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a component cache and starts its expiry sweep.
func New(cfg Config) *ComponentCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 100
	}
	if cfg.MaxEntryBytes <= 0 {
		cfg.MaxEntryBytes = 5 << 20
	}
	if cfg.MaxTotalBytes <= 0 {
		cfg.MaxTotalBytes = 100 << 20
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}

	c := &ComponentCache{
		cfg:     cfg,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
		done:    make(chan struct{}),
	}

	c.wg.Add(1)
	go c.sweep()

	return c
}

// Get returns the cached component for key. An expired entry counts as a
// miss and is removed.
func (c *ComponentCache) Get(key string) (*models.CompleteComponent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	e := el.Value.(*entry)
	if e.expired(time.Now()) {
		c.removeLocked(el)
		c.misses.Add(1)
		return nil, false
	}

	e.lastAccess = time.Now()
	e.accessCount++
	c.lru.MoveToFront(el)
	c.hits.Add(1)
	return e.component, true
}

// Set stores a component under key. Components over the per-entry ceiling
// are rejected without error; the caller already has the component and the
// only cost is a future cache miss. ttl <= 0 uses the default.
func (c *ComponentCache) Set(key string, component *models.CompleteComponent, ttl time.Duration) {
	size := component.Size()
	if size > c.cfg.MaxEntryBytes {
		log.Debug().
			Str("key", key).
			Int64("size", size).
			Int64("limit", c.cfg.MaxEntryBytes).
			Msg("Component too large to cache")
		return
	}
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}

	for c.lru.Len() >= c.cfg.MaxEntries || c.totalBytes+size > c.cfg.MaxTotalBytes {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}

	now := time.Now()
	e := &entry{
		key:        key,
		component:  component,
		size:       size,
		storedAt:   now,
		ttl:        ttl,
		lastAccess: now,
	}
	c.entries[key] = c.lru.PushFront(e)
	c.totalBytes += size
}

// InvalidateByURL removes every entry extracted from url. Returns the count.
func (c *ComponentCache) InvalidateByURL(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.lru.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*entry).component.Metadata.SourceURL == url {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	return removed
}

// InvalidateAll empties the cache. Returns the count.
func (c *ComponentCache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.lru.Len()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.totalBytes = 0
	return removed
}

// InvalidateExpired removes entries past their TTL. Returns the count.
func (c *ComponentCache) InvalidateExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for el := c.lru.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*entry).expired(now) {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	return removed
}

// Stats returns hit/miss counters and current occupancy.
func (c *ComponentCache) Stats() Stats {
	c.mu.Lock()
	entries := c.lru.Len()
	totalBytes := c.totalBytes
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	var rate float64
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	return Stats{
		Entries:    entries,
		TotalBytes: totalBytes,
		Hits:       hits,
		Misses:     misses,
		HitRate:    rate,
	}
}

// Close stops the sweep goroutine.
func (c *ComponentCache) Close() {
	close(c.done)
	c.wg.Wait()
}

func (c *ComponentCache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	c.lru.Remove(el)
	delete(c.entries, e.key)
	c.totalBytes -= e.size
}

func (c *ComponentCache) sweep() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.InvalidateExpired(); n > 0 {
				log.Debug().Int("removed", n).Msg("Swept expired cache entries")
			}
		case <-c.done:
			return
		}
	}
}

// GenerateCacheKey derives a stable key from the extraction inputs. Every
// option that changes the output participates, so two extractions with
// different options never collide.
func GenerateCacheKey(url, selector, format string, opts models.ExtractionOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00", url, selector, format)
	fmt.Fprintf(h, "scope=%t\x00enc=%t\x00inline=%t\x00max=%d\x00",
		opts.ScopeCSS, opts.EncapsulateJS, opts.InlineAssets, opts.MaxAssetSize)
	fmt.Fprintf(h, "types=%s\x00ns=%s\x00wait=%s\x00enctype=%s",
		strings.Join(opts.AssetTypes, ","), opts.CustomNamespace, opts.WaitStrategy, opts.Encapsulation)
	return hex.EncodeToString(h.Sum(nil))
}
