package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MarketID names a tradable market
type MarketID string

// Markets
const (
	// Market55Five follows an external candle feed
	Market55Five MarketID = "55Five"
	// MarketPreA is synthetic and moves with round outcomes
	MarketPreA MarketID = "PreA"
)

// AllMarkets returns every market
func AllMarkets() []MarketID {
	return []MarketID{Market55Five, MarketPreA}
}

// ParseMarket resolves a market name case-insensitively
func ParseMarket(s string) (MarketID, error) {
	for _, m := range AllMarkets() {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errs.ErrInvalidMarket, s)
}

// IsSynthetic reports whether the market is priced from round outcomes
func (m MarketID) IsSynthetic() bool {
	return m == MarketPreA
}

// MarketEvent is an operator-forced move of the synthetic market
type MarketEvent string

// Market events
const (
	EventPump MarketEvent = "Pump"
	EventDump MarketEvent = "Dump"
)

// ParseMarketEvent validates an event name
func ParseMarketEvent(s string) (MarketEvent, error) {
	switch {
	case strings.EqualFold(s, string(EventPump)):
		return EventPump, nil
	case strings.EqualFold(s, string(EventDump)):
		return EventDump, nil
	default:
		return "", fmt.Errorf("%w: unknown market event %q", errs.ErrInvalidRequest, s)
	}
}

var (
	upFactor   = decimal.RequireFromString("1.01")
	downFactor = decimal.RequireFromString("0.985")
)

// Factor is the price multiplier the event applies
func (e MarketEvent) Factor() decimal.Decimal {
	if e == EventPump {
		return upFactor
	}
	return downFactor
}

// EventForSize maps a round outcome's size onto the synthetic move it causes
func EventForSize(s Size) MarketEvent {
	if s == SizeBig {
		return EventPump
	}
	return EventDump
}

// NextSyntheticPrice applies a move and clamps the result at floor
func NextSyntheticPrice(price decimal.Decimal, event MarketEvent, floor decimal.Decimal) decimal.Decimal {
	next := price.Mul(event.Factor()).Round(4)
	if next.LessThan(floor) {
		return floor
	}
	return next
}

// Candle is one OHLC bar keyed by its open time
type Candle struct {
	OpenTime time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
}

// Valid rejects bars with non-positive prices or an inverted range
func (c Candle) Valid() bool {
	if c.OpenTime.IsZero() {
		return false
	}
	for _, p := range []decimal.Decimal{c.Open, c.High, c.Low, c.Close} {
		if !p.IsPositive() {
			return false
		}
	}
	return !c.High.LessThan(c.Low)
}

// MergeCandle inserts or replaces a bar by open time, keeps the slice
// ordered oldest first and trims it to limit entries
func MergeCandle(history []Candle, c Candle, limit int) []Candle {
	i := sort.Search(len(history), func(i int) bool {
		return !history[i].OpenTime.Before(c.OpenTime)
	})
	if i < len(history) && history[i].OpenTime.Equal(c.OpenTime) {
		history[i] = c
	} else {
		history = append(history, Candle{})
		copy(history[i+1:], history[i:])
		history[i] = c
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}

// MarketSnapshot is the current state of a market
type MarketSnapshot struct {
	Market    MarketID
	Price     decimal.Decimal
	UpdatedAt time.Time
	Candles   []Candle
}
