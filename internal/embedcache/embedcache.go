// Package embedcache is a content-hash-keyed cache for expensive embedding
// computations. It layers a distributed Redis tier over a bounded in-process
// map; Redis failures degrade silently to memory-only operation.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"distill/internal/logger"
)

const (
	// MaxKeyTextLength caps the text hashed into the cache key.
	MaxKeyTextLength = 8191
	// DefaultMemoryLimit is the in-process entry cap.
	DefaultMemoryLimit = 1000
	// DefaultTTL applies to both tiers.
	DefaultTTL = 15 * time.Minute

	keyPrefix = "distill:embed:"
)

// Tier is one cache storage layer.
type Tier interface {
	Get(ctx context.Context, key string) ([]float64, bool)
	Set(ctx context.Context, key string, value []float64)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
	Len(ctx context.Context) int
}

// memoryTier is the bounded in-process fallback. Eviction removes the oldest
// insertions once the capacity is exceeded.
type memoryTier struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	order   []string
	limit   int
	ttl     time.Duration
}

type memoryEntry struct {
	value    []float64
	storedAt time.Time
}

func newMemoryTier(limit int, ttl time.Duration) *memoryTier {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryTier{
		entries: make(map[string]memoryEntry),
		limit:   limit,
		ttl:     ttl,
	}
}

func (m *memoryTier) Get(_ context.Context, key string) ([]float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (m *memoryTier) Set(_ context.Context, key string, value []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists {
		m.order = append(m.order, key)
	}
	m.entries[key] = memoryEntry{value: value, storedAt: time.Now()}
	for len(m.entries) > m.limit && len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}
}

func (m *memoryTier) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *memoryTier) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	m.order = nil
}

func (m *memoryTier) Len(_ context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, entry := range m.entries {
		if time.Since(entry.storedAt) <= m.ttl {
			n++
		}
	}
	return n
}

// redisTier is the distributed primary tier. Every failure is logged and
// reported as a miss so callers degrade to the memory tier.
type redisTier struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *redisTier) Get(ctx context.Context, key string) ([]float64, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("redis get failed, falling back to memory tier", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	var value []float64
	if err := json.Unmarshal(data, &value); err != nil {
		logger.Warn("redis entry corrupt, ignoring", map[string]interface{}{"key": key})
		return nil, false
	}
	return value, true
}

func (r *redisTier) Set(ctx context.Context, key string, value []float64) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		logger.Warn("redis set failed, memory tier only", map[string]interface{}{"error": err.Error()})
	}
}

func (r *redisTier) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logger.Warn("redis delete failed", map[string]interface{}{"error": err.Error()})
	}
}

func (r *redisTier) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("redis clear failed mid-scan", map[string]interface{}{"error": err.Error()})
			return
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("redis scan failed during clear", map[string]interface{}{"error": err.Error()})
	}
}

func (r *redisTier) Len(ctx context.Context) int {
	n := 0
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		logger.Warn("redis scan failed during count", map[string]interface{}{"error": err.Error()})
		return 0
	}
	return n
}

// Cache is the two-tier composite. Reads try the distributed tier first;
// writes land in memory synchronously and in Redis asynchronously so a cache
// write never blocks or fails the caller.
type Cache struct {
	distributed Tier
	memory      *memoryTier
}

// Options configures the cache tiers.
type Options struct {
	RedisClient *redis.Client // nil disables the distributed tier
	MemoryLimit int
	TTL         time.Duration
}

// New creates a two-tier cache. A nil Redis client yields a memory-only cache.
func New(opts Options) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{memory: newMemoryTier(opts.MemoryLimit, ttl)}
	if opts.RedisClient != nil {
		c.distributed = &redisTier{client: opts.RedisClient, ttl: ttl}
	}
	return c
}

// Key returns the cache key for text: SHA-256 of the whitespace-normalized,
// length-capped content.
func Key(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if len(normalized) > MaxKeyTextLength {
		normalized = normalized[:MaxKeyTextLength]
	}
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached value for text from either tier.
func (c *Cache) Get(ctx context.Context, text string) ([]float64, bool) {
	key := Key(text)
	if c.distributed != nil {
		if value, ok := c.distributed.Get(ctx, key); ok {
			return value, true
		}
	}
	return c.memory.Get(ctx, key)
}

// Set writes the value to both tiers. The memory write is synchronous; the
// distributed write runs in the background.
func (c *Cache) Set(ctx context.Context, text string, value []float64) {
	key := Key(text)
	c.memory.Set(ctx, key, value)
	if c.distributed != nil {
		go c.distributed.Set(context.WithoutCancel(ctx), key, value)
	}
}

// GetOrCompute returns the cached value for text, calling computeFn only on a
// miss in both tiers. The resulting cache write never blocks the return.
func (c *Cache) GetOrCompute(ctx context.Context, text string, computeFn func(context.Context) ([]float64, error)) ([]float64, error) {
	if value, ok := c.Get(ctx, text); ok {
		return value, nil
	}
	value, err := computeFn(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(ctx, text, value)
	return value, nil
}

// Delete removes the entry for text from both tiers.
func (c *Cache) Delete(ctx context.Context, text string) {
	key := Key(text)
	c.memory.Delete(ctx, key)
	if c.distributed != nil {
		c.distributed.Delete(ctx, key)
	}
}

// ClearAll empties both tiers.
func (c *Cache) ClearAll(ctx context.Context) {
	c.memory.Clear(ctx)
	if c.distributed != nil {
		c.distributed.Clear(ctx)
	}
}

// Stats reports live entry counts per tier. The distributed count is zero
// when the tier is disabled or unreachable.
type Stats struct {
	MemoryEntries      int  `json:"memory_entries"`
	DistributedEntries int  `json:"distributed_entries"`
	DistributedEnabled bool `json:"distributed_enabled"`
}

// Stats counts the entries currently held by each tier.
func (c *Cache) Stats(ctx context.Context) Stats {
	stats := Stats{MemoryEntries: c.memory.Len(ctx)}
	if c.distributed != nil {
		stats.DistributedEnabled = true
		stats.DistributedEntries = c.distributed.Len(ctx)
	}
	return stats
}
