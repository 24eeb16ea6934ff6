package usecase

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// Mutation describes one balance change requested from the ledger
type Mutation struct {
	UserID    uint64
	Mode      entity.LedgerMode
	Amount    int64 // cents, always positive
	Kind      entity.EntryKind
	Reference string
}

// Ledger is the single writer of user balances. Every mutation carries a
// reference that is applied at most once.
type Ledger interface {
	// Credit adds Amount and returns the resulting balance
	Credit(ctx context.Context, m Mutation) (int64, error)

	// Debit subtracts Amount; it fails with ErrInsufficientFunds and changes nothing
	// when the balance cannot cover it
	Debit(ctx context.Context, m Mutation) (int64, error)

	// Balance returns the current balance of one ledger mode
	Balance(ctx context.Context, userID uint64, mode entity.LedgerMode) (int64, error)
}

// Notifier delivers transient per-user notifications
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification)
}
