package persistence

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// PositionFilter narrows position listings
type PositionFilter struct {
	UserID uint64
	Market entity.MarketID       // empty for every market
	Status entity.PositionStatus // empty for every status
	Limit  int
}

// PositionRepository stores trading positions
type PositionRepository interface {
	// Create saves an open position
	Create(ctx context.Context, position *entity.TradingPosition) error

	// GetByID retrieves a position
	//
	// Possible errors:
	// - ErrPositionNotFound: If the position doesn't exist
	GetByID(ctx context.Context, id string) (*entity.TradingPosition, error)

	// List returns matching positions, newest first
	List(ctx context.Context, filter PositionFilter) ([]*entity.TradingPosition, error)

	// MarkClosed persists the close of an open position. It reports false
	// when the position had already been closed.
	MarkClosed(ctx context.Context, position *entity.TradingPosition) (bool, error)
}
