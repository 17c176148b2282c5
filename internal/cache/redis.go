package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL  = 5 * time.Minute
	redisPingTimeout = 5 * time.Second
)

type redisSeriesCache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

func newRedisSeriesCache(cfg config.CacheConfig, namespace string) (*redisSeriesCache, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return &redisSeriesCache{client: client, ttl: cacheTTL(cfg), namespace: namespace}, nil
}

func cacheTTL(cfg config.CacheConfig) time.Duration {
	if cfg.TTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(cfg.TTLSeconds) * time.Second
}

// buildRedisOptions prefers REDIS_URL and falls back to host/port fields.
func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (c *redisSeriesCache) Get(ctx context.Context, itemID string) (domain.DemandSeries, bool, error) {
	payload, err := c.client.Get(ctx, buildSeriesKey(c.namespace, itemID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DemandSeries{}, false, nil
	}
	if err != nil {
		return domain.DemandSeries{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var series domain.DemandSeries
	if err := json.Unmarshal(payload, &series); err != nil {
		return domain.DemandSeries{}, false, fmt.Errorf("decode demand series cache: %w", err)
	}
	return series, true, nil
}

func (c *redisSeriesCache) Set(ctx context.Context, series domain.DemandSeries) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encode demand series cache: %w", err)
	}
	if err := c.client.Set(ctx, buildSeriesKey(c.namespace, series.ItemID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateAll unlinks every series key of the namespace in batches of
// seriesScanBatchSize.
func (c *redisSeriesCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, seriesKeyPattern(c.namespace)+":*", seriesScanBatchSize).Iterator()
	batch := make([]string, 0, seriesScanBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == seriesScanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return flush()
}

func (c *redisSeriesCache) Backend() string { return "redis" }

func (c *redisSeriesCache) Close() error { return c.client.Close() }
