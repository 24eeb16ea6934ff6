package persistence

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// LedgerRepository applies balance mutations and keeps their journal
type LedgerRepository interface {
	// Apply atomically checks the reference, adjusts the user's balance for
	// entry.Mode by entry.Delta and records the entry with its resulting
	// balance. A reference that was already applied changes nothing and
	// reports applied=false with the current balance.
	//
	// Possible errors:
	// - ErrUserNotFound: If the user doesn't exist
	// - ErrInsufficientFunds: If a debit would take the balance below zero
	// - ErrAmountOverflow: If a credit would overflow
	// - ErrDatabaseConnection: If database connection fails
	Apply(ctx context.Context, entry *entity.LedgerEntry) (balance int64, applied bool, err error)

	// GetByReference retrieves an applied entry
	//
	// Possible errors:
	// - ErrNotFound: If no entry carries the reference
	GetByReference(ctx context.Context, reference string) (*entity.LedgerEntry, error)

	// ListByUser returns a user's entries, newest first
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.LedgerEntry, error)
}
