package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/odds-apex/internal/metrics"
	"github.com/yourusername/odds-apex/internal/models"
)

// CacheOptions configures the estimate cache.
type CacheOptions struct {
	Enabled  bool
	TTL      time.Duration
	MaxItems int
}

// DefaultCacheOptions keeps up to 10000 seeded estimates for 10 minutes.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{Enabled: true, TTL: 10 * time.Minute, MaxItems: 10000}
}

// CacheKey identifies a reproducible estimate: the same input, seed and trial count always
// simulate the same draws.
type CacheKey struct {
	InputHash string
	Seed      int64
	Trials    int
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%d:%d", k.InputHash, k.Seed, k.Trials)
}

// NewCacheKey hashes the competitor input into a cache key.
func NewCacheKey(input models.CompetitorInput, seed int64, trials int) (CacheKey, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return CacheKey{}, fmt.Errorf("failed to hash input: %w", err)
	}
	sum := sha256.Sum256(raw)
	return CacheKey{InputHash: hex.EncodeToString(sum[:]), Seed: seed, Trials: trials}, nil
}

// EstimateCache provides in-memory caching for seeded estimates.
type EstimateCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxItems  int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewEstimateCache creates a new estimate cache
func NewEstimateCache(ttl time.Duration, maxItems int) *EstimateCache {
	return &EstimateCache{
		cache:    cache.New(ttl, ttl*2),
		ttl:      ttl,
		maxItems: maxItems,
	}
}

// Get retrieves a cached estimate
func (ec *EstimateCache) Get(key CacheKey) (models.ProbabilityEstimate, bool) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if result, found := ec.cache.Get(key.String()); found {
		if est, ok := result.(models.ProbabilityEstimate); ok {
			ec.hitCount++
			ec.updateMetrics()
			return est, true
		}
	}

	ec.missCount++
	ec.updateMetrics()
	return models.ProbabilityEstimate{}, false
}

// Set stores an estimate in cache. When the cache is full, expired items are purged and
// the new estimate is dropped if there is still no room.
func (ec *EstimateCache) Set(key CacheKey, estimate models.ProbabilityEstimate) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	if ec.maxItems > 0 && ec.cache.ItemCount() >= ec.maxItems {
		ec.cache.DeleteExpired()
		if ec.cache.ItemCount() >= ec.maxItems {
			return
		}
	}

	ec.cache.Set(key.String(), estimate, ec.ttl)
	ec.updateMetrics()
}

// Clear flushes the entire cache
func (ec *EstimateCache) Clear() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.cache.Flush()
	ec.hitCount = 0
	ec.missCount = 0
	ec.updateMetrics()
}

// Prune removes expired estimates and returns how many were dropped.
func (ec *EstimateCache) Prune() int {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	before := ec.cache.ItemCount()
	ec.cache.DeleteExpired()
	ec.updateMetrics()
	return before - ec.cache.ItemCount()
}

// Stats returns cache statistics
func (ec *EstimateCache) Stats() (hits, misses uint64, ratio float64) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.stats()
}

func (ec *EstimateCache) stats() (hits, misses uint64, ratio float64) {
	hits = ec.hitCount
	misses = ec.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (ec *EstimateCache) ItemCount() int {
	return ec.cache.ItemCount()
}

// updateMetrics must be called with the lock held.
func (ec *EstimateCache) updateMetrics() {
	_, _, ratio := ec.stats()
	metrics.UpdateEstimateCache(ratio, ec.cache.ItemCount())
}
