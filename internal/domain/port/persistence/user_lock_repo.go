package persistence

import (
	"context"
	"time"
)

// UserLockRepository guards a user's ledger across processes. The
// in-process queue orders writers inside one instance; this lock keeps two
// instances from interleaving on the same user.
type UserLockRepository interface {
	// AcquireLock takes the user's ledger lock until ttl elapses
	//
	// Possible errors:
	// - ErrUserLocked: If another holder's lock has not expired
	// - ErrDatabaseConnection: If database connection fails
	AcquireLock(ctx context.Context, userID uint64, owner string, ttl time.Duration) error

	// ReleaseLock drops a lock held by owner
	ReleaseLock(ctx context.Context, userID uint64, owner string) error
}
