package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/pkg/lexical"
)

// CachedDrugClassifier wraps an external drug classifier with multi-level
// caching. Drug classifications are stable knowledge, so a normalized name
// is resolved against the external collaborator at most once per TTL
// window no matter how many analyses mention it.
type CachedDrugClassifier struct {
	// External collaborator
	upstream domain.DrugClassifier

	// Multi-level caching
	memoryCache *lru.Cache[string, *classifierCacheEntry] // Tier 1: in-memory LRU (hot data)
	redisClient *redis.Client                             // Tier 2: Redis (warm data), optional

	memoryCacheTTL time.Duration
	redisCacheTTL  time.Duration

	// Concurrency control
	batchSemaphore chan struct{} // limits concurrent external calls

	logger  *logrus.Logger
	stats   *ClassifierCacheStats
	statsMu sync.RWMutex
}

// ClassifierCacheStats represents cache performance statistics
type ClassifierCacheStats struct {
	MemoryHits    int64     `json:"memory_hits"`
	MemoryMisses  int64     `json:"memory_misses"`
	RedisHits     int64     `json:"redis_hits"`
	RedisMisses   int64     `json:"redis_misses"`
	ExternalCalls int64     `json:"external_calls"`
	TotalRequests int64     `json:"total_requests"`
	ErrorCount    int64     `json:"error_count"`
	LastReset     time.Time `json:"last_reset"`
}

// ClassifierCacheConfig represents configuration for the cached classifier
type ClassifierCacheConfig struct {
	MemoryCacheTTL time.Duration `json:"memory_cache_ttl"`
	RedisCacheTTL  time.Duration `json:"redis_cache_ttl"`
	MaxMemorySize  int           `json:"max_memory_size"`
	MaxConcurrency int           `json:"max_concurrency"`
}

// NewCachedDrugClassifier creates a cached classifier. redisClient may be
// nil, in which case only the memory tier is used.
func NewCachedDrugClassifier(
	config ClassifierCacheConfig,
	upstream domain.DrugClassifier,
	redisClient *redis.Client,
	logger *logrus.Logger,
) (*CachedDrugClassifier, error) {
	if config.MemoryCacheTTL == 0 {
		config.MemoryCacheTTL = 15 * time.Minute
	}
	if config.RedisCacheTTL == 0 {
		config.RedisCacheTTL = 24 * time.Hour
	}
	if config.MaxMemorySize == 0 {
		config.MaxMemorySize = 1000
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 5
	}

	memoryCache, err := lru.New[string, *classifierCacheEntry](config.MaxMemorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &CachedDrugClassifier{
		upstream:       upstream,
		memoryCache:    memoryCache,
		redisClient:    redisClient,
		memoryCacheTTL: config.MemoryCacheTTL,
		redisCacheTTL:  config.RedisCacheTTL,
		batchSemaphore: make(chan struct{}, config.MaxConcurrency),
		logger:         logger,
		stats: &ClassifierCacheStats{
			LastReset: time.Now(),
		},
	}, nil
}

// ClassifyDrug implements domain.DrugClassifier with two cache tiers in
// front of the external collaborator.
func (c *CachedDrugClassifier) ClassifyDrug(ctx context.Context, drugName string) (*domain.DrugClassification, error) {
	c.incrementStat("total_requests")

	key := lexical.Normalize(drugName)
	if key == "" {
		c.incrementStat("error_count")
		return nil, fmt.Errorf("drug name cannot be empty")
	}

	// Tier 1: memory
	if classification := c.getFromMemoryCache(key); classification != nil {
		c.incrementStat("memory_hits")
		c.logger.WithFields(logrus.Fields{
			"drug":       key,
			"cache_tier": "memory",
		}).Debug("Classification cache hit")
		return classification, nil
	}
	c.incrementStat("memory_misses")

	// Tier 2: Redis
	if classification := c.getFromRedisCache(ctx, key); classification != nil {
		c.incrementStat("redis_hits")
		c.logger.WithFields(logrus.Fields{
			"drug":       key,
			"cache_tier": "redis",
		}).Debug("Classification cache hit")
		c.setInMemoryCache(key, classification)
		return classification, nil
	}
	c.incrementStat("redis_misses")

	// Cache miss: call the external collaborator
	c.incrementStat("external_calls")
	classification, err := c.fetchFromUpstream(ctx, key)
	if err != nil {
		c.incrementStat("error_count")
		return nil, fmt.Errorf("failed to classify drug %s: %w", key, err)
	}

	c.setInMemoryCache(key, classification)
	c.setInRedisCache(ctx, key, classification)

	c.logger.WithFields(logrus.Fields{
		"drug":       key,
		"drug_class": classification.DrugClass,
	}).Info("Classified drug via external collaborator")

	return classification, nil
}

// BatchClassify classifies multiple drugs concurrently with controlled
// concurrency. Failures are per-drug; successful results are returned
// regardless.
func (c *CachedDrugClassifier) BatchClassify(ctx context.Context, drugNames []string) map[string]*domain.DrugClassification {
	results := make(map[string]*domain.DrugClassification)
	if len(drugNames) == 0 {
		return results
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, name := range drugNames {
		wg.Add(1)
		go func(drugName string) {
			defer wg.Done()

			select {
			case c.batchSemaphore <- struct{}{}:
				defer func() { <-c.batchSemaphore }()
			case <-ctx.Done():
				return
			}

			classification, err := c.ClassifyDrug(ctx, drugName)
			if err != nil {
				c.logger.WithError(err).WithField("drug", drugName).Debug("Batch classification failed for drug")
				return
			}

			mu.Lock()
			results[drugName] = classification
			mu.Unlock()
		}(name)
	}

	wg.Wait()

	c.logger.WithFields(logrus.Fields{
		"batch_size": len(drugNames),
		"successful": len(results),
	}).Debug("Completed batch drug classification")

	return results
}

// InvalidateCache removes a drug from both cache tiers
func (c *CachedDrugClassifier) InvalidateCache(ctx context.Context, drugName string) error {
	key := lexical.Normalize(drugName)
	if key == "" {
		return fmt.Errorf("drug name cannot be empty")
	}

	c.memoryCache.Remove(key)
	if c.redisClient != nil {
		if err := c.redisClient.Del(ctx, redisClassificationKey(key)).Err(); err != nil {
			return fmt.Errorf("failed to invalidate redis entry: %w", err)
		}
	}

	c.logger.WithField("drug", key).Info("Invalidated classification cache entry")
	return nil
}

// GetCacheStats returns cache performance statistics
func (c *CachedDrugClassifier) GetCacheStats() ClassifierCacheStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return *c.stats
}

// Private helpers

func (c *CachedDrugClassifier) getFromMemoryCache(key string) *domain.DrugClassification {
	if entry, ok := c.memoryCache.Get(key); ok {
		if !entry.isExpired() {
			return entry.classification
		}
		c.memoryCache.Remove(key)
	}
	return nil
}

func (c *CachedDrugClassifier) getFromRedisCache(ctx context.Context, key string) *domain.DrugClassification {
	if c.redisClient == nil {
		return nil
	}

	data, err := c.redisClient.Get(ctx, redisClassificationKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Debug("Redis classification lookup failed")
		}
		return nil
	}

	var classification domain.DrugClassification
	if err := json.Unmarshal(data, &classification); err != nil {
		c.logger.WithError(err).WithField("drug", key).Warn("Corrupt classification cache entry; dropping")
		c.redisClient.Del(ctx, redisClassificationKey(key))
		return nil
	}
	return &classification
}

func (c *CachedDrugClassifier) setInMemoryCache(key string, classification *domain.DrugClassification) {
	c.memoryCache.Add(key, &classifierCacheEntry{
		classification: classification,
		expiry:         time.Now().Add(c.memoryCacheTTL),
	})
}

func (c *CachedDrugClassifier) setInRedisCache(ctx context.Context, key string, classification *domain.DrugClassification) {
	if c.redisClient == nil {
		return
	}

	data, err := json.Marshal(classification)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal classification for redis cache")
		return
	}
	if err := c.redisClient.Set(ctx, redisClassificationKey(key), data, c.redisCacheTTL).Err(); err != nil {
		c.logger.WithError(err).Debug("Failed to write classification to redis cache")
	}
}

func (c *CachedDrugClassifier) fetchFromUpstream(ctx context.Context, key string) (*domain.DrugClassification, error) {
	return c.upstream.ClassifyDrug(ctx, key)
}

func (c *CachedDrugClassifier) incrementStat(statName string) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	switch statName {
	case "memory_hits":
		c.stats.MemoryHits++
	case "memory_misses":
		c.stats.MemoryMisses++
	case "redis_hits":
		c.stats.RedisHits++
	case "redis_misses":
		c.stats.RedisMisses++
	case "external_calls":
		c.stats.ExternalCalls++
	case "total_requests":
		c.stats.TotalRequests++
	case "error_count":
		c.stats.ErrorCount++
	}
}

func redisClassificationKey(drug string) string {
	return "drug_classification:" + drug
}

type classifierCacheEntry struct {
	classification *domain.DrugClassification
	expiry         time.Time
}

func (e *classifierCacheEntry) isExpired() bool {
	return time.Now().After(e.expiry)
}
