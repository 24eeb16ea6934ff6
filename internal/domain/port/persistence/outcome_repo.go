package persistence

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// OutcomeRepository keeps the drawn result of every round
type OutcomeRepository interface {
	// Create stores an outcome
	//
	// Possible errors:
	// - ErrDuplicateReference: If the round already has an outcome
	Create(ctx context.Context, outcome *entity.RoundOutcome) error

	// GetByRoundID retrieves a round's outcome
	//
	// Possible errors:
	// - ErrNotFound: If the round has not been drawn
	GetByRoundID(ctx context.Context, roundID string) (*entity.RoundOutcome, error)

	// ListRecent returns the mode's latest outcomes, newest first
	ListRecent(ctx context.Context, mode entity.GameMode, limit int) ([]*entity.RoundOutcome, error)
}
