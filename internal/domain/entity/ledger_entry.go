package entity

import "time"

// EntryKind classifies a balance mutation
type EntryKind string

// Entry kinds
const (
	EntryWagerStake     EntryKind = "wager_stake"
	EntryWagerPayout    EntryKind = "wager_payout"
	EntryWagerRefund    EntryKind = "wager_refund"
	EntryPositionMargin EntryKind = "position_margin"
	EntryPositionClose  EntryKind = "position_close"
	EntryPositionRefund EntryKind = "position_refund"
	EntryDeposit        EntryKind = "deposit"
	EntryWithdraw       EntryKind = "withdraw"
	EntryWithdrawRefund EntryKind = "withdraw_refund"
	EntryAdminAdjust    EntryKind = "admin_adjust"
	EntryDemoReset      EntryKind = "demo_reset"
)

// LedgerEntry records one applied balance mutation. Reference is unique
// across the ledger and makes re-application a no-op.
type LedgerEntry struct {
	ID           string
	UserID       uint64
	Mode         LedgerMode
	Delta        int64 // signed cents
	Kind         EntryKind
	Reference    string
	BalanceAfter int64
	CreatedAt    time.Time
}

// IsCredit reports whether the entry increases the balance
func (e *LedgerEntry) IsCredit() bool {
	return e.Delta > 0
}
