package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/scoutlabs/venturescout-backend/internal/domain/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/platform/envutil"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
)

// WallCache keeps short-lived copies of session listings so the wall endpoint
// does not hit Postgres on every poll. Misses and marshal failures fall
// through to the database.
type WallCache interface {
	Get(ctx context.Context, key string) ([]*types.DiscoverySession, bool)
	Set(ctx context.Context, key string, rows []*types.DiscoverySession)
	Invalidate(ctx context.Context)
}

type redisWallCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisWallCache(log *logger.Logger) (WallCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := envutil.Seconds("WALL_CACHE_TTL_SECONDS", 30*time.Second)

	return &redisWallCache{
		log: log.With("service", "WallCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func wallKey(key string) string { return "wall:" + key }

func (c *redisWallCache) Get(ctx context.Context, key string) ([]*types.DiscoverySession, bool) {
	raw, err := c.rdb.Get(ctx, wallKey(key)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("wall cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var rows []*types.DiscoverySession
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.log.Warn("wall cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return rows, true
}

func (c *redisWallCache) Set(ctx context.Context, key string, rows []*types.DiscoverySession) {
	raw, err := json.Marshal(rows)
	if err != nil {
		c.log.Warn("wall cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, wallKey(key), raw, c.ttl).Err(); err != nil {
		c.log.Warn("wall cache set failed", "key", key, "error", err)
	}
}

// Invalidate drops every wall entry. Called after a new session lands so the
// wall reflects it on the next read.
func (c *redisWallCache) Invalidate(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, wallKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("wall cache invalidate failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("wall cache scan failed", "error", err)
	}
}

// NoopWallCache stands in when Redis is not configured.
type NoopWallCache struct{}

func (NoopWallCache) Get(context.Context, string) ([]*types.DiscoverySession, bool) {
	return nil, false
}
func (NoopWallCache) Set(context.Context, string, []*types.DiscoverySession) {}
func (NoopWallCache) Invalidate(context.Context)                             {}
