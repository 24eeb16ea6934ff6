package cache

import (
	"context"
	"sync"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	cacheport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/cache"
	"github.com/shopspring/decimal"
)

// MemoryPriceCache keeps prices for the life of the process
type MemoryPriceCache struct {
	mu     sync.RWMutex
	prices map[entity.MarketID]decimal.Decimal
}

var _ cacheport.PriceCache = (*MemoryPriceCache)(nil)

// NewMemoryPriceCache creates an empty cache
func NewMemoryPriceCache() *MemoryPriceCache {
	return &MemoryPriceCache{prices: make(map[entity.MarketID]decimal.Decimal)}
}

func (c *MemoryPriceCache) SetPrice(_ context.Context, market entity.MarketID, price decimal.Decimal) error {
	c.mu.Lock()
	c.prices[market] = price
	c.mu.Unlock()
	return nil
}

func (c *MemoryPriceCache) GetPrice(_ context.Context, market entity.MarketID) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.prices[market]
	return p, ok, nil
}
