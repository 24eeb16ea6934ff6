package repository

import (
	"context"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// UserLockRepository implements user locking functionality using GORM
type UserLockRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserLockRepository creates a new UserLockRepository instance
func NewUserLockRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *UserLockRepository {
	return &UserLockRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// AcquireLock takes or renews the user's lease. An unexpired lease held by
// another owner leaves the row untouched and reports ErrUserLocked.
func (r *UserLockRepository) AcquireLock(ctx context.Context, userID uint64, owner string, ttl time.Duration) error {
	now := r.timeProvider.Now()
	expiresAt := now.Add(ttl)

	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO user_locks (user_id, owner, locked_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET owner = EXCLUDED.owner,
		    locked_at = EXCLUDED.locked_at,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
		WHERE user_locks.expires_at <= ? OR user_locks.owner = ?`,
		userID, owner, now, expiresAt, now, now,
		now, owner,
	)

	if result.Error != nil {
		if isContextError(result.Error) {
			r.logger.Warn("Context timeout acquiring lock", map[string]any{
				"user_id": userID,
				"error":   result.Error.Error(),
			})
			return errs.ErrUserLocked
		}
		return handleDatabaseError(r.logger, r.errorClassifier, "acquiring lock", result.Error,
			errs.ErrUserNotFound, errs.ErrUserLocked, map[string]any{"user_id": userID})
	}

	if result.RowsAffected == 0 {
		r.logger.Debug("User is already locked", map[string]any{
			"user_id": userID,
			"owner":   owner,
		})
		return errs.ErrUserLocked
	}
	return nil
}

// ReleaseLock drops the lease if owner still holds it
func (r *UserLockRepository) ReleaseLock(ctx context.Context, userID uint64, owner string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND owner = ?", userID, owner).
		Delete(&model.UserLock{})

	// an unreleased lease expires on its own
	if result.Error != nil && isContextError(result.Error) {
		r.logger.Warn("Context timeout when releasing lock, lock will expire automatically", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil
	}
	if result.Error != nil {
		return handleDatabaseError(r.logger, r.errorClassifier, "releasing lock", result.Error,
			errs.ErrNotFound, errs.ErrUserLocked, map[string]any{"user_id": userID})
	}
	return nil
}

// CleanupExpiredLocks removes all expired locks from the database
func (r *UserLockRepository) CleanupExpiredLocks(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", r.timeProvider.Now()).Delete(&model.UserLock{})
	if result.Error != nil {
		return 0, handleDatabaseError(r.logger, r.errorClassifier, "cleaning up locks", result.Error,
			errs.ErrNotFound, errs.ErrUserLocked, nil)
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Expired locks cleanup completed", map[string]any{
			"locks_removed": result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}
