package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	TransientError    ErrorType = "transient"
	LockError         ErrorType = "lock"
	ConnectionError   ErrorType = "connection"
	ConstraintError   ErrorType = "constraint"
)

// PostgreSQL SQLSTATE codes the repositories react to
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgNotNullViolation     = "23502"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgTooManyConnections   = "53300"
	pgAdminShutdown        = "57P01"
)

// ErrorClassifier provides methods to classify database errors
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

func pgCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

// Classify returns the type of error
func (c *ErrorClassifier) Classify(err error) ErrorType {
	switch {
	case err == nil:
		return ""
	case c.IsDuplicateKeyError(err):
		return DuplicateKeyError
	case c.IsLockError(err):
		return LockError
	case c.IsConnectionError(err):
		return ConnectionError
	case c.IsTransientError(err):
		return TransientError
	case c.IsConstraintError(err):
		return ConstraintError
	}
	return ""
}

// IsDuplicateKeyError checks if the error is a unique violation
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if code, _, ok := pgCode(err); ok {
		return code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key")
}

// ConstraintName returns the violated constraint, if the driver reported one
func (c *ErrorClassifier) ConstraintName(err error) string {
	_, name, _ := pgCode(err)
	return name
}

// IsLockError checks if the error is due to locking
func (c *ErrorClassifier) IsLockError(err error) bool {
	if err == nil {
		return false
	}
	if code, _, ok := pgCode(err); ok {
		return code == pgSerializationFailure || code == pgDeadlockDetected || code == pgLockNotAvailable
	}
	return false
}

// IsConnectionError checks if the error is related to database connectivity
func (c *ErrorClassifier) IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if code, _, ok := pgCode(err); ok {
		return strings.HasPrefix(code, "08") || code == pgTooManyConnections || code == pgAdminShutdown
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "server closed") ||
		strings.Contains(msg, "unexpected EOF")
}

// IsTransientError checks if an error is transient and can be retried
func (c *ErrorClassifier) IsTransientError(err error) bool {
	if err == nil || isContextError(err) {
		return false
	}
	return c.IsLockError(err) || c.IsConnectionError(err)
}

// IsConstraintError checks if the error is related to constraint violations
func (c *ErrorClassifier) IsConstraintError(err error) bool {
	if code, _, ok := pgCode(err); ok {
		return strings.HasPrefix(code, "23")
	}
	return false
}

// IsForeignKeyError reports a reference to a row that does not exist
func (c *ErrorClassifier) IsForeignKeyError(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == pgForeignKeyViolation
}

// Translate maps a driver error onto the domain error set. notFound is used
// for gorm.ErrRecordNotFound and duplicate for unique violations.
func (c *ErrorClassifier) Translate(err, notFound, duplicate error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case isContextError(err), errs.ErrorCode(err) != errs.CodeInternalServer:
		return err
	case c.IsDuplicateKeyError(err):
		return duplicate
	case c.IsForeignKeyError(err):
		return errs.ErrUserNotFound
	case c.IsLockError(err):
		return errs.ErrUserLocked
	case c.IsConstraintError(err):
		return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, c.ConstraintName(err))
	}
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// isContextError checks if an error is related to context timeout or cancellation
func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// handleDatabaseError logs a failed query and returns its domain error
func handleDatabaseError(logger coreport.Logger, classifier *ErrorClassifier, operation string, err, notFound, duplicate error, fields map[string]any) error {
	mapped := classifier.Translate(err, notFound, duplicate)
	if fields == nil {
		fields = map[string]any{}
	}
	fields["operation"] = operation
	fields["error"] = err.Error()

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Debug("Record not found", fields)
	case errors.Is(mapped, errs.ErrDatabaseConnection):
		logger.Error("Database error", fields)
	default:
		logger.Warn("Database operation rejected", fields)
	}
	return mapped
}

// pageLimit maps a non-positive limit onto gorm's "no limit"
func pageLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
