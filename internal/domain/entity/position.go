package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/shopspring/decimal"
)

// Direction is the side of a trading position
type Direction string

// Directions
const (
	DirectionBuy  Direction = "Buy"
	DirectionSell Direction = "Sell"
)

// ParseDirection validates a direction name
func ParseDirection(s string) (Direction, error) {
	switch {
	case strings.EqualFold(s, string(DirectionBuy)):
		return DirectionBuy, nil
	case strings.EqualFold(s, string(DirectionSell)):
		return DirectionSell, nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", errs.ErrInvalidRequest, s)
	}
}

// PositionStatus is the lifecycle state of a position
type PositionStatus string

// Position statuses
const (
	PositionOpen   PositionStatus = "Open"
	PositionClosed PositionStatus = "Closed"
)

// CloseFilter selects which positions a bulk close touches
type CloseFilter string

// Close filters
const (
	CloseAll        CloseFilter = "All"
	CloseProfitOnly CloseFilter = "Profit"
	CloseLossOnly   CloseFilter = "Loss"
)

// ParseCloseFilter validates a bulk close filter
func ParseCloseFilter(s string) (CloseFilter, error) {
	for _, f := range []CloseFilter{CloseAll, CloseProfitOnly, CloseLossOnly} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown close filter %q", errs.ErrInvalidRequest, s)
}

// Matches reports whether a position with the given profit is selected.
// Zero profit counts as profit.
func (f CloseFilter) Matches(profit int64) bool {
	switch f {
	case CloseProfitOnly:
		return profit >= 0
	case CloseLossOnly:
		return profit < 0
	default:
		return true
	}
}

// TradingPosition is a leveraged long or short on a market
type TradingPosition struct {
	ID             string
	UserID         uint64
	Market         MarketID
	Direction      Direction
	EntryPrice     decimal.Decimal
	Margin         int64 // cents
	Leverage       int64
	LedgerMode     LedgerMode
	Status         PositionStatus
	OpenedAt       time.Time
	ClosePrice     decimal.Decimal
	ClosedAt       *time.Time
	RealizedProfit int64 // cents
}

// NewTradingPosition validates and builds an open position
func NewTradingPosition(id string, userID uint64, market MarketID, dir Direction, entry decimal.Decimal, margin, leverage int64, ledgerMode LedgerMode, openedAt time.Time) (*TradingPosition, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if margin <= 0 {
		return nil, fmt.Errorf("%w: margin must be positive", errs.ErrInvalidAmount)
	}
	if leverage <= 0 {
		return nil, fmt.Errorf("%w: leverage must be positive", errs.ErrInvalidRequest)
	}
	if !entry.IsPositive() {
		return nil, fmt.Errorf("%w: no price for %s", errs.ErrInvalidMarket, market)
	}
	return &TradingPosition{
		ID:         id,
		UserID:     userID,
		Market:     market,
		Direction:  dir,
		EntryPrice: entry,
		Margin:     margin,
		Leverage:   leverage,
		LedgerMode: ledgerMode,
		Status:     PositionOpen,
		OpenedAt:   openedAt,
	}, nil
}

// PnLPercent is the fractional price move in the position's favor
func (p *TradingPosition) PnLPercent(price decimal.Decimal) decimal.Decimal {
	move := price.Sub(p.EntryPrice)
	if p.Direction == DirectionSell {
		move = move.Neg()
	}
	return move.Div(p.EntryPrice)
}

// Profit is margin x pnl% x leverage in cents, truncated toward zero
func (p *TradingPosition) Profit(price decimal.Decimal) int64 {
	return decimal.NewFromInt(p.Margin).
		Mul(p.PnLPercent(price)).
		Mul(decimal.NewFromInt(p.Leverage)).
		Truncate(0).
		IntPart()
}

// CloseCredit is what closing at price returns to the ledger: margin plus
// profit, never below zero
func (p *TradingPosition) CloseCredit(price decimal.Decimal) int64 {
	credit := p.Margin + p.Profit(price)
	if credit < 0 {
		return 0
	}
	return credit
}

// MarkClosed records the close; only an open position may close
func (p *TradingPosition) MarkClosed(price decimal.Decimal, at time.Time) error {
	if p.Status != PositionOpen {
		return fmt.Errorf("%w: position %s is %s", errs.ErrInvalidState, p.ID, p.Status)
	}
	p.Status = PositionClosed
	p.ClosePrice = price
	p.ClosedAt = &at
	p.RealizedProfit = p.CloseCredit(price) - p.Margin
	return nil
}

// MarginReference is the ledger reference guarding the margin debit
func (p *TradingPosition) MarginReference() string {
	return "position:" + p.ID + ":margin"
}

// CloseReference is the ledger reference guarding the close credit
func (p *TradingPosition) CloseReference() string {
	return "position:" + p.ID + ":close"
}
