package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// TransactionFilter narrows deposit and withdrawal listings
type TransactionFilter struct {
	UserID uint64 // zero for every user
	Kind   entity.TransactionKind
	Status entity.TransactionStatus
	Limit  int
}

// TransactionRepository stores deposit and withdrawal requests
type TransactionRepository interface {
	// Create saves a pending request
	//
	// Possible errors:
	// - ErrUserNotFound: If referenced user does not exist
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByID retrieves a request
	//
	// Possible errors:
	// - ErrTransactionNotFound: If the request doesn't exist
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)

	// List returns matching requests, newest first
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)

	// Decide moves a pending request to status. It reports false when the
	// request had already been decided.
	Decide(ctx context.Context, id string, status entity.TransactionStatus, decidedAt time.Time) (bool, error)
}
