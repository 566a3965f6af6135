// Package redis caches computed report rows.  Reports are pure reads over
// the normalized model, so a stale entry can never be wrong for longer
// than its TTL and the cache is safe to lose entirely.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ipfolio/patmaint/internal/config"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

// ErrCacheMiss is returned when the key is absent or expired.
var ErrCacheMiss = errors.New(errors.ErrCodeNotFound, "cache miss")

// ReportCache stores marshalled report rows under prefixed keys with a TTL.
type ReportCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    logging.Logger
}

// NewReportCache connects to Redis and verifies the connection with a ping.
func NewReportCache(cfg config.RedisConfig, log logging.Logger) (*ReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to connect to redis")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "patmaint:"
	}
	ttl := cfg.ReportTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	log.Info("connected to redis report cache",
		logging.String("addr", cfg.Addr),
		logging.Duration("ttl", ttl),
	)
	return &ReportCache{client: client, prefix: prefix, ttl: ttl, log: log.Named("report_cache")}, nil
}

// NewReportCacheWithClient wraps an existing client (for tests).
func NewReportCacheWithClient(client *redis.Client, prefix string, ttl time.Duration, log logging.Logger) *ReportCache {
	return &ReportCache{client: client, prefix: prefix, ttl: ttl, log: log}
}

// Get unmarshals the cached value for key into dest.  Returns ErrCacheMiss
// when absent.
func (c *ReportCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to read cache")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to decode cached report")
	}
	return nil
}

// Set stores value under key for the configured TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to encode report")
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write cache")
	}
	return nil
}

// Invalidate removes every key under the cache prefix.  Called after a
// pipeline run so reports reflect the new model immediately.
func (c *ReportCache) Invalidate(ctx context.Context) (int64, error) {
	var deleted int64
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to scan cache keys")
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache keys")
			}
			deleted += int64(len(keys))
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// Ping checks cache liveness for health endpoints.
func (c *ReportCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis ping failed")
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
