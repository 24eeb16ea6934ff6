package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTradingPosition_Profit(t *testing.T) {
	buy, err := NewTradingPosition("p1", 1, MarketPreA, DirectionBuy, d("100"), 100000, 10, LedgerReal, fixedNow)
	require.NoError(t, err)
	sell, err := NewTradingPosition("p2", 1, MarketPreA, DirectionSell, d("100"), 100000, 10, LedgerReal, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), buy.Profit(d("101")))
	assert.Equal(t, int64(-10000), sell.Profit(d("101")))
	assert.Equal(t, int64(15000), sell.Profit(d("98.5")))
}

func TestTradingPosition_CloseIsLossCapped(t *testing.T) {
	p, err := NewTradingPosition("p1", 1, MarketPreA, DirectionBuy, d("100"), 100000, 100, LedgerReal, fixedNow)
	require.NoError(t, err)

	// a 2% drop at 100x loses twice the margin
	assert.Equal(t, int64(0), p.CloseCredit(d("98")))

	require.NoError(t, p.MarkClosed(d("98"), fixedNow))
	assert.Equal(t, PositionClosed, p.Status)
	assert.Equal(t, int64(-100000), p.RealizedProfit)
	assert.ErrorIs(t, p.MarkClosed(d("99"), fixedNow), errs.ErrInvalidState)
}

func TestNewTradingPosition_Invalid(t *testing.T) {
	_, err := NewTradingPosition("p", 1, MarketPreA, DirectionBuy, decimal.Zero, 100, 10, LedgerReal, fixedNow)
	assert.ErrorIs(t, err, errs.ErrInvalidMarket)
	_, err = NewTradingPosition("p", 1, MarketPreA, DirectionBuy, d("1"), 0, 10, LedgerReal, fixedNow)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	_, err = NewTradingPosition("p", 0, MarketPreA, DirectionBuy, d("1"), 100, 10, LedgerReal, fixedNow)
	assert.ErrorIs(t, err, errs.ErrInvalidUserID)
}

func TestCloseFilter(t *testing.T) {
	profits := []int64{500, -200, 100, 0}

	var picked []int64
	for _, p := range profits {
		if CloseProfitOnly.Matches(p) {
			picked = append(picked, p)
		}
	}
	assert.Equal(t, []int64{500, 100, 0}, picked)
	assert.True(t, CloseLossOnly.Matches(-1))
	assert.False(t, CloseLossOnly.Matches(0))
	assert.True(t, CloseAll.Matches(-5))

	f, err := ParseCloseFilter("profit")
	require.NoError(t, err)
	assert.Equal(t, CloseProfitOnly, f)
}
