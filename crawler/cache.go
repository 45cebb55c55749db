package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	bloom "github.com/bits-and-blooms/bloom/v3"
	"golang.org/x/sync/singleflight"

	"github.com/lukemcguire/linkrot/metrics"
)

// CheckCache memoizes check outcomes for the lifetime of one crawl and
// collapses concurrent checks of the same key into a single request.
// A bloom filter of stored keys answers most misses without touching the
// cache shards. A nil *CheckCache runs every check.
type CheckCache struct {
	entries *bigcache.BigCache
	group   singleflight.Group
	metrics *metrics.Recorder

	mu   sync.RWMutex
	seen *bloom.BloomFilter
}

// checkEntrySize is the expected encoded size of one outcome.
const checkEntrySize = 256

// NewCheckCache returns a cache bounded to sizeMB megabytes, or nil when
// sizeMB is not positive.
func NewCheckCache(ctx context.Context, sizeMB int, rec *metrics.Recorder) (*CheckCache, error) {
	if sizeMB <= 0 {
		return nil, nil
	}

	cfg := bigcache.DefaultConfig(30 * time.Minute)
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 4096
	cfg.MaxEntrySize = checkEntrySize
	cfg.HardMaxCacheSize = sizeMB
	cfg.CleanWindow = 0
	cfg.Verbose = false

	store, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create check cache: %w", err)
	}
	capacity := uint(sizeMB) << 20 / checkEntrySize
	return &CheckCache{
		entries: store,
		metrics: rec,
		seen:    bloom.NewWithEstimates(capacity, 0.01),
	}, nil
}

// Do returns the cached outcome for key, calling fn on a miss. Outcomes
// produced after ctx is done are not stored.
func (c *CheckCache) Do(ctx context.Context, key string, fn func() checkOutcome) checkOutcome {
	if c == nil {
		return fn()
	}

	if out, ok := c.lookup(key); ok {
		c.metrics.CacheLookup(true)
		return out
	}
	c.metrics.CacheLookup(false)

	v, _, _ := c.group.Do(key, func() (any, error) {
		if out, ok := c.lookup(key); ok {
			return out, nil
		}
		out := fn()
		if ctx.Err() == nil {
			c.save(key, out)
		}
		return out, nil
	})
	return v.(checkOutcome)
}

func (c *CheckCache) lookup(key string) (checkOutcome, bool) {
	c.mu.RLock()
	maybe := c.seen.TestString(key)
	c.mu.RUnlock()
	if !maybe {
		return checkOutcome{}, false
	}

	data, err := c.entries.Get(key)
	if err != nil {
		return checkOutcome{}, false
	}
	var out checkOutcome
	if err := json.Unmarshal(data, &out); err != nil {
		return checkOutcome{}, false
	}
	return out, true
}

func (c *CheckCache) save(key string, out checkOutcome) {
	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	// Set fails only for entries larger than a shard.
	if err := c.entries.Set(key, data); err != nil {
		return
	}
	c.mu.Lock()
	c.seen.AddString(key)
	c.mu.Unlock()
}

// Len reports the number of cached outcomes.
func (c *CheckCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// Close releases the cache.
func (c *CheckCache) Close() error {
	if c == nil {
		return nil
	}
	if err := c.entries.Close(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close check cache: %w", err)
	}
	return nil
}
