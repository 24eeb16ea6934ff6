package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewWager(t *testing.T) {
	w, err := NewWager("w1", 1, "budi", "20240101110", Mode30s, DigitSelection(7), 100000, 1, LedgerReal, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, WagerPending, w.Status)
	assert.Equal(t, int64(100000), w.Cost())
	assert.Equal(t, "1", w.Owner())
	assert.Equal(t, "wager:w1:payout", w.PayoutReference())

	_, err = NewWager("w2", 0, "", "r", Mode30s, GreenSelection, 100, 1, LedgerReal, fixedNow)
	assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	_, err = NewWager("w3", 1, "", "r", "2Min", GreenSelection, 100, 1, LedgerReal, fixedNow)
	assert.ErrorIs(t, err, errs.ErrInvalidGameMode)
	_, err = NewWager("w4", 1, "", "r", Mode30s, GreenSelection, 0, 1, LedgerReal, fixedNow)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	_, err = NewWager("w5", 1, "", "r", Mode30s, GreenSelection, 100, 0, LedgerReal, fixedNow)
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
}

func TestWager_ResolveDigitSeven(t *testing.T) {
	w, err := NewWager("w1", 1, "budi", "r", Mode30s, DigitSelection(7), 1000, 1, LedgerReal, fixedNow)
	require.NoError(t, err)

	status, payout := w.Resolve(outcomeOf(t, 7), DefaultPayoutTable())
	assert.Equal(t, WagerWin, status)
	assert.Equal(t, int64(9000), payout)

	status, payout = w.Resolve(outcomeOf(t, 3), DefaultPayoutTable())
	assert.Equal(t, WagerLoss, status)
	assert.Equal(t, int64(0), payout)
}

func TestWager_ResolveWithMultiplier(t *testing.T) {
	w, err := NewWager("w1", 1, "budi", "r", Mode30s, BigSelection, 1000, 3, LedgerDemo, fixedNow)
	require.NoError(t, err)

	status, payout := w.Resolve(outcomeOf(t, 9), DefaultPayoutTable())
	assert.Equal(t, WagerWin, status)
	assert.Equal(t, int64(5700), payout)
}

func TestWager_MarkSettledOnce(t *testing.T) {
	w, err := NewWager("w1", 1, "budi", "r", Mode30s, GreenSelection, 1000, 1, LedgerReal, fixedNow)
	require.NoError(t, err)

	require.NoError(t, w.MarkSettled(WagerWin, 1900, fixedNow))
	assert.Equal(t, WagerWin, w.Status)
	assert.ErrorIs(t, w.MarkSettled(WagerLoss, 0, fixedNow), errs.ErrInvalidState)
	assert.Equal(t, int64(1900), w.Payout)
}

func TestWager_BotOwner(t *testing.T) {
	w := &Wager{Username: "Sultan12", IsBot: true}
	assert.Equal(t, "bot:Sultan12", w.Owner())
}
