package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// WagerRepository stores real and demo wagers. Bot wagers never reach it.
type WagerRepository interface {
	// Create saves a pending wager
	Create(ctx context.Context, wager *entity.Wager) error

	// GetByID retrieves a wager
	//
	// Possible errors:
	// - ErrWagerNotFound: If the wager doesn't exist
	GetByID(ctx context.Context, id string) (*entity.Wager, error)

	// ListPendingByRound returns the round's wagers still awaiting settlement
	ListPendingByRound(ctx context.Context, roundID string) ([]*entity.Wager, error)

	// ListByUser returns a user's wagers, newest first
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Wager, error)

	// MarkSettled moves a wager from Pending to status. It reports false,
	// without error, when the wager had already left Pending.
	MarkSettled(ctx context.Context, id string, status entity.WagerStatus, payout int64, settledAt time.Time) (bool, error)
}
