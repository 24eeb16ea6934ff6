package override

import (
	"fmt"
	"sync"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
)

// Channel holds operator-forced results: one pending number per game mode
// and one pending move per synthetic market. Every value is consumed at
// most once; a later write replaces an earlier one.
type Channel struct {
	mu      sync.Mutex
	numbers map[entity.GameMode]int
	events  map[entity.MarketID]entity.MarketEvent
	logger  coreport.Logger
}

// NewChannel creates an empty override channel
func NewChannel(logger coreport.Logger) *Channel {
	return &Channel{
		numbers: make(map[entity.GameMode]int),
		events:  make(map[entity.MarketID]entity.MarketEvent),
		logger:  logger,
	}
}

// SetOverride forces the next outcome of mode
func (c *Channel) SetOverride(mode entity.GameMode, n int) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", errs.ErrInvalidGameMode, mode)
	}
	if n < 0 || n > 9 {
		return fmt.Errorf("%w: forced number %d out of range", errs.ErrInvalidRequest, n)
	}

	c.mu.Lock()
	c.numbers[mode] = n
	c.mu.Unlock()

	c.logger.Info("Outcome override set", map[string]any{"mode": mode, "number": n})
	return nil
}

// ClearOverride drops a pending override
func (c *Channel) ClearOverride(mode entity.GameMode) {
	c.mu.Lock()
	delete(c.numbers, mode)
	c.mu.Unlock()

	c.logger.Info("Outcome override cleared", map[string]any{"mode": mode})
}

// Peek returns the pending override without consuming it
func (c *Channel) Peek(mode entity.GameMode) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.numbers[mode]
	return n, ok
}

// Take returns and clears the pending override in one step
func (c *Channel) Take(mode entity.GameMode) *int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.numbers[mode]
	if !ok {
		return nil
	}
	delete(c.numbers, mode)
	return &n
}

// ForceMarketEvent queues a move for the next update of a synthetic market
func (c *Channel) ForceMarketEvent(market entity.MarketID, event entity.MarketEvent) error {
	if !market.IsSynthetic() {
		return fmt.Errorf("%w: %s follows an external feed", errs.ErrInvalidMarket, market)
	}

	c.mu.Lock()
	c.events[market] = event
	c.mu.Unlock()

	c.logger.Info("Market event forced", map[string]any{"market": market, "event": event})
	return nil
}

// TakeMarketEvent returns and clears the pending market move
func (c *Channel) TakeMarketEvent(market entity.MarketID) (entity.MarketEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.events[market]
	if ok {
		delete(c.events, market)
	}
	return e, ok
}
