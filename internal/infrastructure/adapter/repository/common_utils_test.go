package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func pgErr(code, constraint string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, ConstraintName: constraint})
}

func TestErrorClassifier_Classify(t *testing.T) {
	c := NewErrorClassifier()

	testCases := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"Nil", nil, ""},
		{"UniqueViolation", pgErr(pgUniqueViolation, "idx_users_phone"), DuplicateKeyError},
		{"SerializationFailure", pgErr(pgSerializationFailure, ""), LockError},
		{"Deadlock", pgErr(pgDeadlockDetected, ""), LockError},
		{"ConnectionClass", pgErr("08006", ""), ConnectionError},
		{"CheckViolation", pgErr(pgCheckViolation, "chk_users_real_balance"), ConstraintError},
		{"ConnectionRefusedText", errors.New("dial tcp: connection refused"), ConnectionError},
		{"Unknown", errors.New("syntax error"), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Classify(tc.err))
		})
	}
}

func TestErrorClassifier_Transient(t *testing.T) {
	c := NewErrorClassifier()

	assert.True(t, c.IsTransientError(pgErr(pgDeadlockDetected, "")))
	assert.True(t, c.IsTransientError(errors.New("read: connection reset by peer")))
	assert.False(t, c.IsTransientError(pgErr(pgUniqueViolation, "")), "duplicate keys never succeed on retry")
	assert.False(t, c.IsTransientError(context.Canceled))
}

func TestErrorClassifier_Translate(t *testing.T) {
	c := NewErrorClassifier()

	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{"RecordNotFound", gorm.ErrRecordNotFound, errs.ErrWagerNotFound},
		{"Duplicate", pgErr(pgUniqueViolation, "idx_ledger_entries_reference"), errs.ErrDuplicateReference},
		{"ForeignKey", pgErr(pgForeignKeyViolation, "fk_wagers_user"), errs.ErrUserNotFound},
		{"Lock", pgErr(pgLockNotAvailable, ""), errs.ErrUserLocked},
		{"Check", pgErr(pgCheckViolation, "chk_transactions_amount"), errs.ErrConstraintViolation},
		{"DomainErrorPassesThrough", errs.ErrInsufficientFunds, errs.ErrInsufficientFunds},
		{"Other", errors.New("boom"), errs.ErrDatabaseConnection},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Translate(tc.err, errs.ErrWagerNotFound, errs.ErrDuplicateReference)
			assert.ErrorIs(t, got, tc.expected)
		})
	}

	assert.ErrorIs(t, c.Translate(context.DeadlineExceeded, errs.ErrNotFound, errs.ErrDuplicateReference), context.DeadlineExceeded)
	assert.NoError(t, c.Translate(nil, errs.ErrNotFound, errs.ErrDuplicateReference))
}

func TestPageLimit(t *testing.T) {
	assert.Equal(t, -1, pageLimit(0))
	assert.Equal(t, -1, pageLimit(-5))
	assert.Equal(t, 20, pageLimit(20))
}
