package xcache

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/store"
	"github.com/redis/go-redis/v9"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/looplj/ecagate/internal/log"
	redis_store "github.com/looplj/ecagate/internal/pkg/xcache/redis"
	"github.com/looplj/ecagate/internal/pkg/xredis"
)

// Cache is an alias to the gocache CacheInterface so callers can depend on xcache only.
type Cache[T any] = cachelib.CacheInterface[T]

type SetterCache[T any] = cachelib.SetterCacheInterface[T]

// NewMemory creates a pure in-memory cache using patrickmn/go-cache as the backend.
func NewMemory[T any](client *gocache.Cache, options ...Option) SetterCache[T] {
	return cachelib.New[T](gocache_store.NewGoCache(client, options...))
}

// NewMemoryWithOptions builds the go-cache client from the expiration and cleanup interval.
func NewMemoryWithOptions[T any](defaultExpiration, cleanupInterval time.Duration, options ...Option) SetterCache[T] {
	return NewMemory[T](gocache.New(defaultExpiration, cleanupInterval), options...)
}

// NewRedis creates a redis backed cache storing JSON values under prefix.
func NewRedis[T any](client *redis.Client, prefix string, options ...Option) SetterCache[T] {
	return cachelib.New[T](redis_store.NewRedisStore[T](client, prefix, options...))
}

// NewTwoLevel constructs a 2-level cache: memory first, then Redis.
func NewTwoLevel[T any](memory SetterCache[T], redis SetterCache[T]) Cache[T] {
	return cachelib.NewChain[T](memory, redis)
}

// NewFromConfig builds a typed cache from the given Config.
// Modes:
//   - memory: in-memory only
//   - redis: redis only
//   - two-level: memory + redis chain
//   - none: every lookup misses
//
// An empty or unknown mode is treated as none. namespace is appended to the
// redis key prefix so several typed caches can share one database.
func NewFromConfig[T any](ctx context.Context, cfg Config, namespace string) (Cache[T], error) {
	switch cfg.Mode {
	case ModeMemory, ModeRedis, ModeTwoLevel:
	default:
		log.Info(ctx, "cache disabled", log.String("namespace", namespace), log.String("mode", cfg.Mode))
		return NewNoop[T](), nil
	}

	memExpiration := defaultIfZero(cfg.Memory.Expiration, 5*time.Minute)
	memCleanupInterval := defaultIfZero(cfg.Memory.CleanupInterval, 10*time.Minute)
	mem := NewMemoryWithOptions[T](memExpiration, memCleanupInterval, store.WithExpiration(memExpiration))

	if cfg.Mode == ModeMemory {
		log.Info(ctx, "using memory cache", log.String("namespace", namespace))
		return mem, nil
	}

	if !cfg.Redis.Enabled() {
		if cfg.Mode == ModeRedis {
			return nil, fmt.Errorf("cache mode %q requires redis addr or url", cfg.Mode)
		}

		log.Warn(ctx, "two-level cache without redis, falling back to memory", log.String("namespace", namespace))

		return mem, nil
	}

	client, err := xredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	redisExpiration := defaultIfZero(cfg.Redis.Expiration, 30*time.Minute)
	rds := NewRedis[T](client, cfg.Redis.KeyPrefix+namespace+":", store.WithExpiration(redisExpiration))

	if cfg.Mode == ModeRedis {
		log.Info(ctx, "using redis cache", log.String("namespace", namespace))
		return rds, nil
	}

	log.Info(ctx, "using two-level cache", log.String("namespace", namespace))

	return NewTwoLevel[T](mem, rds), nil
}

func defaultIfZero(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}

	return d
}
