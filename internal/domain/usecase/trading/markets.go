package trading

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	cacheport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/cache"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/override"
	"github.com/shopspring/decimal"
)

// MarketConfig describes how markets are priced
type MarketConfig struct {
	InitialPrices map[entity.MarketID]decimal.Decimal
	// SourceMode is the game mode whose outcomes move the synthetic market
	SourceMode  entity.GameMode
	Floor       decimal.Decimal
	CandleLimit int
}

// DefaultMarketConfig starts both markets at 1000 and moves PreA with 30s outcomes
func DefaultMarketConfig() MarketConfig {
	return MarketConfig{
		InitialPrices: map[entity.MarketID]decimal.Decimal{
			entity.Market55Five: decimal.NewFromInt(1000),
			entity.MarketPreA:   decimal.NewFromInt(1000),
		},
		SourceMode:  entity.Mode30s,
		Floor:       decimal.NewFromInt(1),
		CandleLimit: 100,
	}
}

type marketState struct {
	price     decimal.Decimal
	updatedAt time.Time
	candles   []entity.Candle
}

// Markets holds the live price of every market
type Markets struct {
	mu     sync.RWMutex
	states map[entity.MarketID]*marketState

	cache        cacheport.PriceCache
	overrides    *override.Channel
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          MarketConfig
}

// NewMarkets creates the market book at its initial prices. cache may be nil.
func NewMarkets(cache cacheport.PriceCache, overrides *override.Channel, timeProvider coreport.TimeProvider, logger coreport.Logger, cfg MarketConfig) *Markets {
	if cfg.CandleLimit <= 0 {
		cfg.CandleLimit = 100
	}
	states := make(map[entity.MarketID]*marketState)
	for _, m := range entity.AllMarkets() {
		states[m] = &marketState{price: cfg.InitialPrices[m]}
	}
	return &Markets{
		states:       states,
		cache:        cache,
		overrides:    overrides,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
	}
}

// Restore loads the last cached price of every market
func (m *Markets) Restore(ctx context.Context) error {
	if m.cache == nil {
		return nil
	}
	for _, market := range entity.AllMarkets() {
		price, found, err := m.cache.GetPrice(ctx, market)
		if err != nil {
			return fmt.Errorf("restoring %s price: %w", market, err)
		}
		if !found || !price.IsPositive() {
			continue
		}
		m.mu.Lock()
		m.states[market].price = price
		m.mu.Unlock()
		m.logger.Info("Market price restored", map[string]any{"market": market, "price": price.String()})
	}
	return nil
}

// Price returns the current price of a market
func (m *Markets) Price(market entity.MarketID) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[market]
	if !ok || !st.price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: no price for %q", errs.ErrInvalidMarket, market)
	}
	return st.price, nil
}

// Snapshot returns a copy of the market's state
func (m *Markets) Snapshot(market entity.MarketID) (entity.MarketSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.states[market]
	if !ok {
		return entity.MarketSnapshot{}, fmt.Errorf("%w: %q", errs.ErrInvalidMarket, market)
	}
	candles := make([]entity.Candle, len(st.candles))
	copy(candles, st.candles)
	return entity.MarketSnapshot{Market: market, Price: st.price, UpdatedAt: st.updatedAt, Candles: candles}, nil
}

// ApplyCandle merges a bar from the external feed into a non-synthetic
// market; its close becomes the market price
func (m *Markets) ApplyCandle(ctx context.Context, market entity.MarketID, c entity.Candle) error {
	if market.IsSynthetic() {
		return fmt.Errorf("%w: %s is priced from round outcomes", errs.ErrInvalidMarket, market)
	}
	if !c.Valid() {
		return fmt.Errorf("%w: malformed candle for %s", errs.ErrInvalidRequest, market)
	}

	m.mu.Lock()
	st, ok := m.states[market]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", errs.ErrInvalidMarket, market)
	}
	st.candles = entity.MergeCandle(st.candles, c, m.cfg.CandleLimit)
	latest := st.candles[len(st.candles)-1]
	st.price = latest.Close
	st.updatedAt = m.timeProvider.Now()
	price := st.price
	m.mu.Unlock()

	m.store(ctx, market, price)
	return nil
}

// HandleOutcome moves the synthetic market on each outcome of the source
// mode. A forced operator move takes the place of the outcome's move.
func (m *Markets) HandleOutcome(ctx context.Context, e event.Event) {
	drawn, ok := e.(event.OutcomeDrawn)
	if !ok || drawn.Outcome.Mode != m.cfg.SourceMode {
		return
	}

	move, forced := m.overrides.TakeMarketEvent(entity.MarketPreA)
	if !forced {
		move = entity.EventForSize(drawn.Outcome.Size)
	}

	m.mu.Lock()
	st := m.states[entity.MarketPreA]
	st.price = entity.NextSyntheticPrice(st.price, move, m.cfg.Floor)
	st.updatedAt = m.timeProvider.Now()
	price := st.price
	m.mu.Unlock()

	m.logger.Debug("Synthetic market moved", map[string]any{
		"market":   entity.MarketPreA,
		"round_id": drawn.Outcome.RoundID,
		"move":     move,
		"forced":   forced,
		"price":    price.String(),
	})
	m.store(ctx, entity.MarketPreA, price)
}

func (m *Markets) store(ctx context.Context, market entity.MarketID, price decimal.Decimal) {
	if m.cache == nil {
		return
	}
	if err := m.cache.SetPrice(ctx, market, price); err != nil {
		m.logger.Warn("Failed to cache market price", map[string]any{"market": market, "error": err.Error()})
	}
}
