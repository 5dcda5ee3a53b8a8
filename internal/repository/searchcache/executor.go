package searchcache

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

	"github.com/kailas-cloud/geolocator/internal/db"
	"github.com/kailas-cloud/geolocator/internal/domain"
	"github.com/kailas-cloud/geolocator/internal/domain/search/request"
	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
)

// DefaultTTL bounds how stale a cached response may be.
const DefaultTTL = 10 * time.Minute

var cacheKeyPrefix = domain.KeyPrefix + "search_cache:"

// executor is the wrapped search call.
type executor interface {
	Execute(ctx context.Context, req *request.Request) (result.Raw, error)
}

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExecutor caches raw provider responses in a key-value store.
// Hits skip the provider and the quota it charges.
type CachedExecutor struct {
	inner      executor
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. A non-positive ttl falls back to DefaultTTL.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner executor,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExecutor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedExecutor{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Execute returns a cached response or calls the inner executor.
// Only successful responses carrying an items array are cached.
func (c *CachedExecutor) Execute(ctx context.Context, req *request.Request) (result.Raw, error) {
	key := cacheKey(req)

	if raw, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return raw, nil
	}

	c.incCache("miss")

	raw, err := c.inner.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	if cacheable(raw) {
		c.putToCache(ctx, key, raw)
	} else {
		c.logger.Debug("Search response not cached: no items array", zap.String("key", key))
	}
	return raw, nil
}

// cacheable reports whether raw is a JSON object with an items array.
func cacheable(raw result.Raw) bool {
	var envelope struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return false
	}
	return envelope.Items != nil
}

func (c *CachedExecutor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes every provider parameter of the request.
func cacheKey(req *request.Request) string {
	h := sha256.New()
	for _, part := range []string{
		req.Location(),
		req.LocationRadius(),
		req.Keywords(),
		string(req.Kind()),
		strconv.Itoa(req.MaxResults()),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedExecutor) getFromCache(ctx context.Context, key string) (result.Raw, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached search", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return result.Raw(data), true
}

func (c *CachedExecutor) putToCache(ctx context.Context, key string, raw result.Raw) {
	if err := c.store.SetWithTTL(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search", zap.String("key", key), zap.Error(err))
	}
}
