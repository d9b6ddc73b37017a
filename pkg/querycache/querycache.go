// Package querycache fronts the rate limited transit data service with a
// time bucketed cache. Each logical query class gets its own TTL because
// staleness tolerance differs by orders of magnitude between them; the total
// entry count is bounded by the store.
package querycache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"
	"github.com/nysselive/nysselive/pkg/stats"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type Class string

const (
	ClassStops  Class = "stops"
	ClassRoutes Class = "routes"
	ClassAlerts Class = "alerts"
	ClassTrips  Class = "trips"
)

type Options struct {
	// MaxEntries bounds the in-process store. Ignored for redis, which is
	// bounded by the server's own memory policy.
	MaxEntries int64
	TTLs       map[Class]time.Duration

	// RedisClient switches the cache to a shared redis store when set.
	RedisClient *redis.Client
}

// FetchFunc performs the actual upstream call on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

type Cache struct {
	classes   map[Class]*cache.Cache[[]byte]
	group     singleflight.Group
	ristretto *ristretto.Cache
	collector *stats.Collector
}

// New builds a cache with one store wrapper per query class. collector may be
// nil.
func New(opts Options, collector *stats.Collector) (*Cache, error) {
	c := &Cache{
		classes:   map[Class]*cache.Cache[[]byte]{},
		collector: collector,
	}

	if opts.RedisClient == nil {
		ristrettoClient, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: opts.MaxEntries * 10,
			MaxCost:     opts.MaxEntries,
			BufferItems: 64,
		})
		if err != nil {
			return nil, err
		}
		c.ristretto = ristrettoClient
	}

	for class, ttl := range opts.TTLs {
		if opts.RedisClient != nil {
			c.classes[class] = cache.New[[]byte](
				redisstore.NewRedis(opts.RedisClient, store.WithExpiration(ttl)),
			)
		} else {
			// every entry costs 1 so MaxCost is an entry count bound
			c.classes[class] = cache.New[[]byte](
				ristrettostore.NewRistretto(c.ristretto, store.WithExpiration(ttl), store.WithCost(1)),
			)
		}
	}

	return c, nil
}

// GetOrFetch returns the cached value for key within its class TTL, invoking
// fetch on a miss and storing the result. Concurrent misses for the same key
// collapse into a single upstream call.
func (c *Cache) GetOrFetch(ctx context.Context, class Class, key string, fetch FetchFunc) ([]byte, error) {
	classCache, ok := c.classes[class]
	if !ok {
		return fetch(ctx)
	}

	cacheKey := string(class) + ":" + key

	value, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		if data, err := classCache.Get(ctx, cacheKey); err == nil {
			if c.collector != nil {
				c.collector.CacheHits.WithLabelValues(string(class)).Inc()
			}
			return data, nil
		}

		if c.collector != nil {
			c.collector.CacheMisses.WithLabelValues(string(class)).Inc()
		}

		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if err := classCache.Set(ctx, cacheKey, data); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to store query result in cache")
		}

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]byte), nil
}
