package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	cacheport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

// RedisConfig addresses the redis server holding market prices
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL of a cached price; zero keeps it until overwritten
	TTL time.Duration
}

// RedisPriceCache stores each market's price under <prefix>:price:<market>
type RedisPriceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger coreport.Logger
}

var _ cacheport.PriceCache = (*RedisPriceCache)(nil)

// NewRedisPriceCache connects to redis and verifies the connection with a ping
func NewRedisPriceCache(ctx context.Context, cfg RedisConfig, logger coreport.Logger) (*RedisPriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Connected to Redis", map[string]any{"addr": cfg.Addr, "db": cfg.DB})
	return NewRedisPriceCacheFromClient(client, cfg.KeyPrefix, cfg.TTL, logger), nil
}

// NewRedisPriceCacheFromClient wraps an existing client
func NewRedisPriceCacheFromClient(client *redis.Client, prefix string, ttl time.Duration, logger coreport.Logger) *RedisPriceCache {
	if prefix == "" {
		prefix = "wingo"
	}
	return &RedisPriceCache{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (c *RedisPriceCache) key(market entity.MarketID) string {
	return c.prefix + ":price:" + string(market)
}

func (c *RedisPriceCache) SetPrice(ctx context.Context, market entity.MarketID, price decimal.Decimal) error {
	if err := c.client.Set(ctx, c.key(market), price.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("caching %s price: %w", market, err)
	}
	return nil
}

func (c *RedisPriceCache) GetPrice(ctx context.Context, market entity.MarketID) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.key(market)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("reading %s price: %w", market, err)
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		c.logger.Warn("Discarding unparsable cached price", map[string]any{"market": market, "value": val})
		return decimal.Zero, false, nil
	}
	return price, true, nil
}

// Close releases the redis connection pool
func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}
