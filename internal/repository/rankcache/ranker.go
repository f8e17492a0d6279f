// Package rankcache decorates a ranker with a key-value cache, so repeated
// queries over an unchanged candidate set skip the LLM round trip.
package rankcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/treadline/tiredex/internal/db"
	"github.com/treadline/tiredex/internal/domain/catalog"
)

const cacheKeyPrefix = "tiredex:rank_cache:"

// DefaultTTL bounds how long a ranked order is reused. Ranking is
// near-deterministic but not stable forever; a short TTL keeps drift small.
const DefaultTTL = 15 * time.Minute

// Ranker is the inner ranking contract (ISP, matches usecase/search.Ranker).
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []catalog.Item, limit int) ([]catalog.Item, error)
}

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedRanker caches ranked results in a key-value store.
type CachedRanker struct {
	inner      Ranker
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Ranker,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedRanker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedRanker{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Rank returns a cached ranked list or calls the inner ranker.
// Cache failures are never fatal: a broken cache degrades to the inner call,
// and an inner failure is returned untouched for the pipeline to absorb.
func (c *CachedRanker) Rank(
	ctx context.Context, query string, candidates []catalog.Item, limit int,
) ([]catalog.Item, error) {
	key, err := c.cacheKey(query, candidates, limit)
	if err != nil {
		// Unserializable candidates also break the prompt; let the inner
		// ranker produce the canonical error.
		return c.inner.Rank(ctx, query, candidates, limit)
	}

	if items, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return items, nil
	}

	c.incCache("miss")

	ranked, err := c.inner.Rank(ctx, query, candidates, limit)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	c.putToCache(ctx, key, ranked)
	return ranked, nil
}

func (c *CachedRanker) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the query, the serialized candidate set, and the limit.
// Any catalog change that survives filtering changes the key.
func (c *CachedRanker) cacheKey(query string, candidates []catalog.Item, limit int) (string, error) {
	data, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(limit)))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (c *CachedRanker) getFromCache(ctx context.Context, key string) ([]catalog.Item, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached ranking", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var items []catalog.Item
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("Failed to parse cached ranking", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return items, true
}

func (c *CachedRanker) putToCache(ctx context.Context, key string, items []catalog.Item) {
	data, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("Failed to serialize ranking for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache ranking", zap.String("key", key), zap.Error(err))
	}
}
