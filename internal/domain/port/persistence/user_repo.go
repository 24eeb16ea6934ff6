package persistence

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// UserFilter narrows operator user listings
type UserFilter struct {
	// Search matches id, username, display name, email or phone
	Search string
	Limit  int
	Offset int
}

// UserRepository defines methods to interact with account data.
// Balances are only changed through LedgerRepository.Apply.
type UserRepository interface {
	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.User, error)

	// FindByIdentity resolves a login identity: phone with or without the
	// leading zero, or email compared case-insensitively
	//
	// Possible errors:
	// - ErrUserNotFound: If nobody matches
	FindByIdentity(ctx context.Context, identity string) (*entity.User, error)

	// ExistsByUsername reports whether a handle is taken by a user other than exceptID
	ExistsByUsername(ctx context.Context, username string, exceptID uint64) (bool, error)

	// Create stores a new user and assigns its ID
	//
	// Possible errors:
	// - ErrDuplicateRegistration: If phone, email or username is taken
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, user *entity.User) error

	// Update saves profile, role, ban, active mode and payout accounts.
	// Balances are left untouched.
	//
	// Possible errors:
	// - ErrUserNotFound: If user doesn't exist
	// - ErrDuplicateRegistration: If the new username or email is taken
	Update(ctx context.Context, user *entity.User) error

	// List returns users ordered by ID
	List(ctx context.Context, filter UserFilter) ([]*entity.User, error)
}
