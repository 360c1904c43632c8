package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"time"

	"github.com/hightman/xunsearch/lib/metrics"
	"github.com/hightman/xunsearch/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var Logger = logger.GetLogger(common.LoggerCache)

const (
	keyPrefix = "xs:count:"

	// DefaultTTL is the lifetime of a cached count
	DefaultTTL = 5 * time.Minute
)

// CountCache keeps the estimated match count of queries in redis so repeated
// count requests do not reach the search server. Concurrent lookups of the
// same query are collapsed into one.
type CountCache struct {
	rdb     *redis.Client
	project string
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
}

// New creates a cache on top of an existing redis client
func New(rdb *redis.Client, project string, ttl time.Duration) *CountCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CountCache{rdb: rdb, project: project, ttl: ttl, metrics: metrics.Default()}
}

// Dial connects to redis at addr and verifies the connection with a PING
func Dial(ctx context.Context, addr, project string, ttl time.Duration) (*CountCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(rdb, project, ttl), nil
}

// Get returns the cached count of a query
func (c *CountCache) Get(ctx context.Context, query string) (int, bool) {
	key := c.key(query)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			Logger.Warningf("cache get %s failed: %v", key, err)
		}
		c.metrics.CacheMissesTotal.Inc()
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		c.metrics.CacheMissesTotal.Inc()
		return 0, false
	}
	c.metrics.CacheHitsTotal.Inc()
	return count, true
}

// Set stores the count of a query
func (c *CountCache) Set(ctx context.Context, query string, count int) {
	key := c.key(query)
	if err := c.rdb.Set(ctx, key, strconv.Itoa(count), c.ttl).Err(); err != nil {
		Logger.Warningf("cache set %s failed: %v", key, err)
	}
}

// GetOrCompute returns the cached count or calls compute and caches its
// result. The flag reports a cache hit. Redis failures only cost a miss.
func (c *CountCache) GetOrCompute(ctx context.Context, query string, compute func() (int, error)) (int, bool, error) {
	if count, ok := c.Get(ctx, query); ok {
		return count, true, nil
	}
	v, err, _ := c.group.Do(c.key(query), func() (any, error) {
		count, err := compute()
		if err != nil {
			return 0, err
		}
		c.Set(ctx, query, count)
		return count, nil
	})
	if err != nil {
		return 0, false, err
	}
	return v.(int), false, nil
}

// Invalidate removes all cached counts of the project, e.g. after the index
// was flushed
func (c *CountCache) Invalidate(ctx context.Context) (int64, error) {
	var deleted int64
	iter := c.rdb.Scan(ctx, 0, keyPrefix+c.project+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("deleting key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scanning keys: %w", err)
	}
	Logger.Infof("invalidated %d cached counts of %s", deleted, c.project)
	return deleted, nil
}

// Close closes the redis client
func (c *CountCache) Close() error {
	return c.rdb.Close()
}

func (c *CountCache) key(query string) string {
	hash := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.project, hash[:16])
}
