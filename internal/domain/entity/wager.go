package entity

import (
	"fmt"
	"strconv"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/shopspring/decimal"
)

// WagerStatus is the settlement state of a wager
type WagerStatus string

// Wager statuses
const (
	WagerPending WagerStatus = "Pending"
	WagerWin     WagerStatus = "Win"
	WagerLoss    WagerStatus = "Loss"
)

// BotOwnerPrefix namespaces synthetic wager owners away from real user ids
const BotOwnerPrefix = "bot:"

// Wager is a stake on one selection for one round
type Wager struct {
	ID         string
	UserID     uint64 // zero for bot wagers
	Username   string
	RoundID    string
	Mode       GameMode
	Selection  Selection
	Stake      int64 // cents per unit
	Multiplier int64
	LedgerMode LedgerMode
	Status     WagerStatus
	Payout     int64 // cents, zero until settled as a win
	PlacedAt   time.Time
	SettledAt  *time.Time
	IsBot      bool
}

// NewWager validates and builds a pending wager
func NewWager(id string, userID uint64, username, roundID string, mode GameMode, sel Selection, stake, multiplier int64, ledgerMode LedgerMode, placedAt time.Time) (*Wager, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidGameMode, mode)
	}
	if stake <= 0 {
		return nil, fmt.Errorf("%w: stake must be positive", errs.ErrInvalidAmount)
	}
	if multiplier <= 0 {
		return nil, fmt.Errorf("%w: multiplier must be positive", errs.ErrInvalidAmount)
	}
	if _, err := MulCents(stake, multiplier); err != nil {
		return nil, err
	}
	return &Wager{
		ID:         id,
		UserID:     userID,
		Username:   username,
		RoundID:    roundID,
		Mode:       mode,
		Selection:  sel,
		Stake:      stake,
		Multiplier: multiplier,
		LedgerMode: ledgerMode,
		Status:     WagerPending,
		PlacedAt:   placedAt,
	}, nil
}

// Cost is what the wager debits: stake times multiplier
func (w *Wager) Cost() int64 {
	return w.Stake * w.Multiplier
}

// Owner is the display owner id, namespaced for bots
func (w *Wager) Owner() string {
	if w.IsBot {
		return BotOwnerPrefix + w.Username
	}
	return strconv.FormatUint(w.UserID, 10)
}

// Resolve computes the terminal status and payout against an outcome without mutating the wager
func (w *Wager) Resolve(o RoundOutcome, table PayoutTable) (WagerStatus, int64) {
	multiple := w.Selection.Multiple(o, table)
	if multiple.IsZero() {
		return WagerLoss, 0
	}
	return WagerWin, ApplyMultiple(w.Cost(), multiple)
}

// MultipleFor exposes the payout multiple used by Resolve
func (w *Wager) MultipleFor(o RoundOutcome, table PayoutTable) decimal.Decimal {
	return w.Selection.Multiple(o, table)
}

// MarkSettled records the terminal state; only a pending wager may settle
func (w *Wager) MarkSettled(status WagerStatus, payout int64, at time.Time) error {
	if w.Status != WagerPending {
		return fmt.Errorf("%w: wager %s is %s", errs.ErrInvalidState, w.ID, w.Status)
	}
	if status != WagerWin && status != WagerLoss {
		return fmt.Errorf("%w: cannot settle as %s", errs.ErrInvalidState, status)
	}
	w.Status = status
	w.Payout = payout
	w.SettledAt = &at
	return nil
}

// PayoutReference is the ledger reference guarding the wager's credit
func (w *Wager) PayoutReference() string {
	return "wager:" + w.ID + ":payout"
}

// StakeReference is the ledger reference guarding the wager's debit
func (w *Wager) StakeReference() string {
	return "wager:" + w.ID + ":stake"
}
