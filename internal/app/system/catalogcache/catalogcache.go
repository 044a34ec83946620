// Package catalogcache keeps the published course list in Redis so the
// discovery page does not reread the courses collection on every request.
//
// The cache is optional. A Cache built with a nil client passes every call
// straight to the loader, and Redis errors are logged and treated as misses.
package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/metrics"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key holds the JSON-encoded published catalog.
const Key = "learnhub:catalog:courses"

// DefaultTTL is used when a non-positive TTL is passed to New.
const DefaultTTL = 5 * time.Minute

// Loader reads the catalog from the database.
type Loader func(ctx context.Context) ([]models.Course, error)

// Cache fronts a Loader with Redis.
type Cache struct {
	rdb     redis.Cmdable
	ttl     time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
}

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr, password string, db int, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	log.Info("connected to redis", zap.String("addr", addr))
	return rdb, nil
}

// New returns a Cache. rdb may be nil.
func New(rdb redis.Cmdable, ttl time.Duration, log *zap.Logger, m *metrics.Metrics) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log, metrics: m}
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool { return c != nil && c.rdb != nil }

// Courses returns the cached catalog, loading and storing it on a miss.
func (c *Cache) Courses(ctx context.Context, load Loader) ([]models.Course, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	raw, err := c.rdb.Get(ctx, Key).Bytes()
	switch {
	case err == nil:
		var courses []models.Course
		uerr := json.Unmarshal(raw, &courses)
		if uerr == nil {
			c.metrics.CacheResult("hit")
			return courses, nil
		}
		c.metrics.CacheResult("error")
		c.log.Warn("catalog cache entry unreadable", zap.Error(uerr))
	case errors.Is(err, redis.Nil):
		c.metrics.CacheResult("miss")
	default:
		c.metrics.CacheResult("error")
		c.log.Warn("catalog cache get failed", zap.Error(err))
	}

	courses, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if b, merr := json.Marshal(courses); merr == nil {
		if serr := c.rdb.Set(ctx, Key, b, c.ttl).Err(); serr != nil {
			c.log.Warn("catalog cache set failed", zap.Error(serr))
		}
	}
	return courses, nil
}

// Invalidate drops the cached catalog. Called after every course write.
func (c *Cache) Invalidate(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Del(ctx, Key).Err(); err != nil {
		c.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
