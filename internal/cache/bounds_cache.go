package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"terrain-desktop/internal/common"
)

const indexFile = "cog_bounds.json"

// BoundsEntry is a cached dataset extent
type BoundsEntry struct {
	URL        string        `json:"url"`
	Bounds     common.Bounds `json:"bounds"`
	CreateTime time.Time     `json:"createTime"`
}

// BoundsCache keeps recently looked-up COG extents in an LRU, optionally
// mirrored to a JSON index so they survive restarts
type BoundsCache struct {
	lru *expirable.LRU[string, BoundsEntry]
	ttl time.Duration

	// Empty when the cache is memory-only
	path string
	mu   sync.Mutex
}

// NewBoundsCache creates a cache. An empty dir keeps everything in memory.
func NewBoundsCache(dir string, cfg *Config) (*BoundsCache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	size := cfg.MaxEntries
	if size <= 0 {
		size = DefaultConfig().MaxEntries
	}
	ttl := time.Duration(cfg.TTLDays) * 24 * time.Hour

	c := &BoundsCache{
		lru: expirable.NewLRU[string, BoundsEntry](size, nil, ttl),
		ttl: ttl,
	}

	if dir == "" {
		return c, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	c.path = filepath.Join(dir, indexFile)

	if err := c.load(); err != nil {
		// A corrupt index only costs a few refetches
		os.Remove(c.path)
	}
	return c, nil
}

// Get returns the cached extent for a dataset URL
func (c *BoundsCache) Get(url string) (common.Bounds, bool) {
	e, ok := c.lru.Get(url)
	if !ok {
		return common.Bounds{}, false
	}
	return e.Bounds, true
}

// Set stores an extent and persists the index
func (c *BoundsCache) Set(url string, b common.Bounds) error {
	c.lru.Add(url, BoundsEntry{URL: url, Bounds: b, CreateTime: time.Now()})
	return c.save()
}

// Len returns the number of live entries
func (c *BoundsCache) Len() int {
	return c.lru.Len()
}

// Clear drops every entry, on disk as well
func (c *BoundsCache) Clear() error {
	c.lru.Purge()
	if c.path == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache index: %w", err)
	}
	return nil
}

func (c *BoundsCache) load() error {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []BoundsEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	for _, e := range entries {
		if c.ttl > 0 && time.Since(e.CreateTime) > c.ttl {
			continue
		}
		c.lru.Add(e.URL, e)
	}
	return nil
}

func (c *BoundsCache) save() error {
	if c.path == "" {
		return nil
	}

	// Values() is oldest first, so reloading keeps the recency order
	entries := c.lru.Values()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache index: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache index: %w", err)
	}
	return nil
}
