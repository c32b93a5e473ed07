// Package cache provides the in-memory analysis result cache. Keys are
// namespaced file paths; entries carry a content hash so stale results for
// edited files are never served. Caching is a pure optimization layer: any
// failure degrades to a miss, never an error.
package cache

import (
	"context"
	"encoding/hex"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// keyNamespace prefixes all analysis keys so a shared backing store could
// be substituted without collisions.
const keyNamespace = "analysis:"

// evictFraction is the share of entries (oldest first) removed when the
// size ceiling is reached.
const evictFraction = 0.10

// Key builds the namespaced cache key for a file path.
func Key(path string) string {
	return keyNamespace + path
}

// PathFromKey recovers the file path from a namespaced key.
func PathFromKey(key string) string {
	return strings.TrimPrefix(key, keyNamespace)
}

// HashFile computes the BLAKE3 content hash of a file.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// ReadAndHash reads a file once and returns both its contents and their
// BLAKE3 hash, so callers never hash different bytes than they analyze.
func ReadAndHash(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, HashBytes(data), nil
}

// HashBytes computes the BLAKE3 hash of bytes as a hex string.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Entry is one cached analysis result.
type Entry[T any] struct {
	Key         string
	Value       T
	Timestamp   time.Time
	TTL         time.Duration
	HitCount    uint64
	ContentHash string
	size        int64
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Entries        int     `json:"entries"`
	Hits           uint64  `json:"hits"`
	Misses         uint64  `json:"misses"`
	Evictions      uint64  `json:"evictions"`
	EstimatedBytes int64   `json:"estimated_bytes"`
	HitRate        float64 `json:"hit_rate"`
}

// SizeFunc estimates the in-memory footprint of a value. Estimates only
// need to be proportionally right; eviction ordering is by timestamp, not
// by size.
type SizeFunc[T any] func(T) int64

// Cache is a content-hash-validated TTL cache with oldest-first eviction.
// A single mutex serializes all mutation; eviction can never race a get or
// set of the same key.
type Cache[T any] struct {
	mu        sync.Mutex
	entries   map[string]*Entry[T]
	ttl       time.Duration
	maxBytes  int64
	sizeOf    SizeFunc[T]
	totalSize int64
	hits      uint64
	misses    uint64
	evictions uint64
	now       func() time.Time
}

// New creates a cache with the given TTL and size ceiling. A nil sizeOf
// charges every entry a flat nominal size.
func New[T any](ttl time.Duration, maxBytes int64, sizeOf SizeFunc[T]) *Cache[T] {
	if sizeOf == nil {
		sizeOf = func(T) int64 { return 1024 }
	}
	return &Cache[T]{
		entries:  make(map[string]*Entry[T]),
		ttl:      ttl,
		maxBytes: maxBytes,
		sizeOf:   sizeOf,
		now:      time.Now,
	}
}

// Get returns the cached value for key if it exists, has not expired, and
// matches the supplied content hash. All three miss cases delete the stale
// entry.
func (c *Cache[T]) Get(key, contentHash string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	if c.now().Sub(entry.Timestamp) > entry.TTL || entry.ContentHash != contentHash {
		c.deleteLocked(key)
		c.misses++
		return zero, false
	}

	entry.HitCount++
	c.hits++
	return entry.Value, true
}

// Set stores a value under key, evicting the oldest entries first when the
// ceiling would be exceeded. Entries are timestamped on insert/refresh only;
// hits do not touch the timestamp.
func (c *Cache[T]) Set(key string, value T, contentHash string) {
	size := c.sizeOf(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.totalSize -= old.size
	}

	if c.maxBytes > 0 && c.totalSize+size > c.maxBytes {
		c.evictOldestLocked()
	}

	c.entries[key] = &Entry[T]{
		Key:         key,
		Value:       value,
		Timestamp:   c.now(),
		TTL:         c.ttl,
		ContentHash: contentHash,
		size:        size,
	}
	c.totalSize += size
}

// evictOldestLocked removes the oldest 10% of entries by timestamp.
// Approximate LRU: ordering is by insertion/refresh time, not last access.
func (c *Cache[T]) evictOldestLocked() {
	n := len(c.entries)
	if n == 0 {
		return
	}
	count := int(float64(n) * evictFraction)
	if count < 1 {
		count = 1
	}

	keys := make([]string, 0, n)
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].Timestamp.Before(c.entries[keys[j]].Timestamp)
	})

	for _, k := range keys[:count] {
		c.deleteLocked(k)
		c.evictions++
	}
}

func (c *Cache[T]) deleteLocked(key string) {
	if entry, ok := c.entries[key]; ok {
		c.totalSize -= entry.size
		delete(c.entries, key)
	}
}

// Invalidate removes a single entry.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteLocked(key)
}

// InvalidateBatch removes several entries at once.
func (c *Cache[T]) InvalidateBatch(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.deleteLocked(k)
	}
}

// InvalidateMatching removes every entry whose key matches the pattern.
func (c *Cache[T]) InvalidateMatching(pattern *regexp.Regexp) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for k := range c.entries {
		if pattern.MatchString(k) {
			c.deleteLocked(k)
			removed++
		}
	}
	return removed
}

// Clear removes all entries. Counters survive; they describe the process
// lifetime, not the current population.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry[T])
	c.totalSize = 0
}

// GetStats returns a snapshot of cache statistics.
func (c *Cache[T]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Entries:        len(c.entries),
		Hits:           c.hits,
		Misses:         c.misses,
		Evictions:      c.evictions,
		EstimatedBytes: c.totalSize,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// topHitKeys returns the n most-hit keys, most first.
func (c *Cache[T]) topHitKeys(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].HitCount > c.entries[keys[j]].HitCount
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// WarmOptions bounds a warming pass.
type WarmOptions struct {
	TopHits   int // most-hit cached keys to refresh alongside candidates
	BatchSize int
}

// ComputeFunc recomputes the value and content hash for a key during
// warming.
type ComputeFunc[T any] func(ctx context.Context, key string) (T, string, error)

// Warm recomputes and (re)inserts the candidate keys plus the top-N
// most-hit cached keys, in bounded batches. Individual failures are
// swallowed so one bad file never aborts the pass; only context
// cancellation stops it early.
func (c *Cache[T]) Warm(ctx context.Context, candidates []string, opts WarmOptions, compute ComputeFunc[T]) error {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 16
	}

	seen := make(map[string]bool, len(candidates))
	keys := make([]string, 0, len(candidates)+opts.TopHits)
	for _, k := range candidates {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	if opts.TopHits > 0 {
		for _, k := range c.topHitKeys(opts.TopHits) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	for start := 0; start < len(keys); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(keys) {
			end = len(keys)
		}
		for _, key := range keys[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}
			value, hash, err := compute(ctx, key)
			if err != nil {
				continue
			}
			c.Set(key, value, hash)
		}
	}

	return nil
}
